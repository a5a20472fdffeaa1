package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fwojciec/mangawatch"
)

// Compile-time interface verification.
var (
	_ mangawatch.SubscriptionService   = (*SubscriptionService)(nil)
	_ mangawatch.PushSubscriberService = (*PushSubscriberService)(nil)
)

// SubscriptionService implements mangawatch.SubscriptionService using SQLite.
type SubscriptionService struct {
	db *DB
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(db *DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// UpsertSubscription creates or replaces the setting for a (user, item) pair.
func (s *SubscriptionService) UpsertSubscription(ctx context.Context, sub *mangawatch.SubscriptionSetting) error {
	if sub.ReadingStatus == "" {
		sub.ReadingStatus = mangawatch.ReadingStatusReading
	}
	if err := sub.Validate(); err != nil {
		return err
	}

	var lastRead any
	if sub.LastReadChapter != nil {
		lastRead = *sub.LastReadChapter
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (user_id, tracked_item_id, notifications_enabled, reading_status, last_read_chapter)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, tracked_item_id) DO UPDATE SET
			notifications_enabled = excluded.notifications_enabled,
			reading_status = excluded.reading_status,
			last_read_chapter = excluded.last_read_chapter
	`, sub.UserID, sub.TrackedItemID, sub.NotificationsEnabled, string(sub.ReadingStatus), lastRead)
	if err != nil {
		return mangawatch.WrapError(mangawatch.EPERSIST, err, "upsert subscription")
	}
	return nil
}

// FindSubscriptions retrieves settings matching the filter.
func (s *SubscriptionService) FindSubscriptions(ctx context.Context, filter mangawatch.SubscriptionFilter) ([]*mangawatch.SubscriptionSetting, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT user_id, tracked_item_id, notifications_enabled, reading_status, last_read_chapter FROM subscriptions WHERE 1=1")

	if filter.UserID != nil {
		query.WriteString(" AND user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.TrackedItemID != nil {
		query.WriteString(" AND tracked_item_id = ?")
		args = append(args, *filter.TrackedItemID)
	}
	if filter.NotificationsEnabled != nil {
		query.WriteString(" AND notifications_enabled = ?")
		args = append(args, *filter.NotificationsEnabled)
	}

	query.WriteString(" ORDER BY user_id ASC")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*mangawatch.SubscriptionSetting
	for rows.Next() {
		var sub mangawatch.SubscriptionSetting
		var status string
		var lastRead sql.NullFloat64
		if err := rows.Scan(&sub.UserID, &sub.TrackedItemID, &sub.NotificationsEnabled, &status, &lastRead); err != nil {
			return nil, err
		}
		sub.ReadingStatus = mangawatch.ReadingStatus(status)
		if lastRead.Valid {
			v := lastRead.Float64
			sub.LastReadChapter = &v
		}
		subs = append(subs, &sub)
	}

	return subs, rows.Err()
}

// PushSubscriberService implements mangawatch.PushSubscriberService using SQLite.
type PushSubscriberService struct {
	db *DB
}

// NewPushSubscriberService creates a new PushSubscriberService.
func NewPushSubscriberService(db *DB) *PushSubscriberService {
	return &PushSubscriberService{db: db}
}

// UpsertPushSubscriber stores the user's push token.
func (s *PushSubscriberService) UpsertPushSubscriber(ctx context.Context, sub *mangawatch.PushSubscriber) error {
	if sub.UserID == "" || sub.PushToken == "" {
		return mangawatch.Errorf(mangawatch.EINVALID, "push subscriber user ID and token required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO push_subscribers (user_id, push_token) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET push_token = excluded.push_token
	`, sub.UserID, sub.PushToken)
	if err != nil {
		return mangawatch.WrapError(mangawatch.EPERSIST, err, "upsert push subscriber")
	}
	return nil
}

// FindPushSubscriber retrieves the subscriber for a user.
func (s *PushSubscriberService) FindPushSubscriber(ctx context.Context, userID string) (*mangawatch.PushSubscriber, error) {
	sub := mangawatch.PushSubscriber{UserID: userID}
	err := s.db.QueryRowContext(ctx, "SELECT push_token FROM push_subscribers WHERE user_id = ?", userID).Scan(&sub.PushToken)
	if err == sql.ErrNoRows {
		return nil, mangawatch.Errorf(mangawatch.ENOTFOUND, "push subscriber not found")
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
