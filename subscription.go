package mangawatch

import "context"

// ReadingStatus is a user's progress state for a tracked item.
type ReadingStatus string

// Reading statuses.
const (
	ReadingStatusReading    ReadingStatus = "reading"
	ReadingStatusCompleted  ReadingStatus = "completed"
	ReadingStatusPlanToRead ReadingStatus = "plan_to_read"
	ReadingStatusDropped    ReadingStatus = "dropped"
	ReadingStatusOnHold     ReadingStatus = "on_hold"
)

// Valid reports whether s is a known reading status.
func (s ReadingStatus) Valid() bool {
	switch s {
	case ReadingStatusReading, ReadingStatusCompleted, ReadingStatusPlanToRead,
		ReadingStatusDropped, ReadingStatusOnHold:
		return true
	}
	return false
}

// Active reports whether a reader with this status wants to hear about
// new chapters.
func (s ReadingStatus) Active() bool {
	return s == ReadingStatusReading || s == ReadingStatusPlanToRead
}

// SubscriptionSetting links a user to a tracked item.
// It is owned by the user-facing API; the scheduler only reads it.
type SubscriptionSetting struct {
	UserID               string        `json:"userId"`
	TrackedItemID        string        `json:"trackedItemId"`
	NotificationsEnabled bool          `json:"notificationsEnabled"`
	ReadingStatus        ReadingStatus `json:"readingStatus"`
	LastReadChapter      *float64      `json:"lastReadChapter,omitempty"`
}

// Validate returns an error if the setting contains invalid fields.
func (s *SubscriptionSetting) Validate() error {
	if s.UserID == "" {
		return Errorf(EINVALID, "subscription user ID required")
	}
	if s.TrackedItemID == "" {
		return Errorf(EINVALID, "subscription tracked item ID required")
	}
	if !s.ReadingStatus.Valid() {
		return Errorf(EINVALID, "invalid reading status %q", s.ReadingStatus)
	}
	return nil
}

// HasActiveReader reports whether the item behind settings should be
// checked: true when nobody is subscribed or at least one subscriber is an
// active reader.
func HasActiveReader(settings []*SubscriptionSetting) bool {
	if len(settings) == 0 {
		return true
	}
	for _, s := range settings {
		if s.ReadingStatus.Active() {
			return true
		}
	}
	return false
}

// SubscriptionService represents a service for managing subscription settings.
type SubscriptionService interface {
	// UpsertSubscription creates or replaces the setting for a (user, item) pair.
	UpsertSubscription(ctx context.Context, s *SubscriptionSetting) error

	// FindSubscriptions retrieves settings matching the filter.
	FindSubscriptions(ctx context.Context, filter SubscriptionFilter) ([]*SubscriptionSetting, error)
}

// SubscriptionFilter represents a filter for FindSubscriptions.
type SubscriptionFilter struct {
	UserID               *string `json:"userId"`
	TrackedItemID        *string `json:"trackedItemId"`
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
}

// PushSubscriber holds a user's serialized push subscription.
type PushSubscriber struct {
	UserID    string `json:"userId"`
	PushToken string `json:"pushToken"`
}

// PushSubscriberService represents a service for managing push subscribers.
type PushSubscriberService interface {
	// UpsertPushSubscriber stores the user's push token, replacing any previous one.
	UpsertPushSubscriber(ctx context.Context, s *PushSubscriber) error

	// FindPushSubscriber retrieves the subscriber for a user.
	// Returns ENOTFOUND if the user has no push subscription.
	FindPushSubscriber(ctx context.Context, userID string) (*PushSubscriber, error)
}
