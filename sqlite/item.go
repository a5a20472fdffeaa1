package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/mangawatch"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ mangawatch.TrackedItemService = (*TrackedItemService)(nil)

// TrackedItemService implements mangawatch.TrackedItemService using SQLite.
type TrackedItemService struct {
	db *DB
}

// NewTrackedItemService creates a new TrackedItemService.
func NewTrackedItemService(db *DB) *TrackedItemService {
	return &TrackedItemService{db: db}
}

const trackedItemColumns = "id, url, title, cover_url, domain, last_checked_at, created_at"

// UpsertTrackedItem inserts the item or refreshes the row with the same URL.
// Empty titles and cover URLs never overwrite stored values.
func (s *TrackedItemService) UpsertTrackedItem(ctx context.Context, item *mangawatch.TrackedItem) error {
	if item.Domain == "" && item.URL != "" {
		domain, err := mangawatch.DomainOf(item.URL)
		if err != nil {
			return err
		}
		item.Domain = domain
	}
	if err := item.Validate(); err != nil {
		return err
	}

	var createdAt string
	var lastCheckedAt sql.NullString
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tracked_items (id, url, title, cover_url, domain, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = CASE WHEN excluded.title != '' THEN excluded.title ELSE tracked_items.title END,
			cover_url = CASE WHEN excluded.cover_url != '' THEN excluded.cover_url ELSE tracked_items.cover_url END,
			domain = excluded.domain
		RETURNING id, title, cover_url, last_checked_at, created_at
	`, uuid.New().String(), item.URL, item.Title, item.CoverURL, item.Domain,
		s.db.now().Format(time.RFC3339),
	).Scan(&item.ID, &item.Title, &item.CoverURL, &lastCheckedAt, &createdAt)
	if err != nil {
		return mangawatch.WrapError(mangawatch.EPERSIST, err, "upsert tracked item %q", item.URL)
	}

	if item.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return err
	}
	item.LastCheckedAt, err = parseNullRFC3339(lastCheckedAt, "last_checked_at")
	return err
}

// FindTrackedItemByID retrieves an item by ID.
func (s *TrackedItemService) FindTrackedItemByID(ctx context.Context, id string) (*mangawatch.TrackedItem, error) {
	items, err := s.FindTrackedItems(ctx, mangawatch.TrackedItemFilter{ID: &id, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, mangawatch.Errorf(mangawatch.ENOTFOUND, "tracked item not found")
	}
	return items[0], nil
}

// FindTrackedItems retrieves items matching the filter, oldest first.
func (s *TrackedItemService) FindTrackedItems(ctx context.Context, filter mangawatch.TrackedItemFilter) ([]*mangawatch.TrackedItem, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + trackedItemColumns + " FROM tracked_items WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Domain != nil {
		query.WriteString(" AND domain = ?")
		args = append(args, *filter.Domain)
	}

	query.WriteString(" ORDER BY created_at ASC, id ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*mangawatch.TrackedItem
	for rows.Next() {
		item, err := scanTrackedItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// UpdateTrackedItem updates an existing item.
func (s *TrackedItemService) UpdateTrackedItem(ctx context.Context, id string, upd mangawatch.TrackedItemUpdate) (*mangawatch.TrackedItem, error) {
	item, err := s.FindTrackedItemByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		item.Title = *upd.Title
	}
	if upd.CoverURL != nil {
		item.CoverURL = *upd.CoverURL
	}
	if upd.LastCheckedAt != nil {
		t := upd.LastCheckedAt.UTC().Truncate(time.Second)
		item.LastCheckedAt = &t
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE tracked_items
		SET title = ?, cover_url = ?, last_checked_at = ?
		WHERE id = ?
	`, item.Title, item.CoverURL, formatNullTime(item.LastCheckedAt), id)
	if err != nil {
		return nil, mangawatch.WrapError(mangawatch.EPERSIST, err, "update tracked item %q", id)
	}

	return item, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrackedItem(row scanner) (*mangawatch.TrackedItem, error) {
	var item mangawatch.TrackedItem
	var lastCheckedAt sql.NullString
	var createdAt string

	if err := row.Scan(&item.ID, &item.URL, &item.Title, &item.CoverURL, &item.Domain,
		&lastCheckedAt, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if item.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if item.LastCheckedAt, err = parseNullRFC3339(lastCheckedAt, "last_checked_at"); err != nil {
		return nil, err
	}
	return &item, nil
}
