package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/mangawatch"
)

// Compile-time interface verification.
var _ mangawatch.ChapterService = (*ChapterService)(nil)

// ChapterService implements mangawatch.ChapterService using SQLite.
type ChapterService struct {
	db *DB
}

// NewChapterService creates a new ChapterService.
func NewChapterService(db *DB) *ChapterService {
	return &ChapterService{db: db}
}

// UpsertChapters writes all chapters in a single transaction. Re-running
// with the same input leaves the table unchanged.
func (s *ChapterService) UpsertChapters(ctx context.Context, chapters []*mangawatch.Chapter) error {
	if len(chapters) == 0 {
		return nil
	}
	for _, c := range chapters {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return mangawatch.WrapError(mangawatch.EPERSIST, err, "begin chapter upsert")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chapters (tracked_item_id, number, title, url, release_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tracked_item_id, number) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			release_date = excluded.release_date
	`)
	if err != nil {
		return mangawatch.WrapError(mangawatch.EPERSIST, err, "prepare chapter upsert")
	}
	defer stmt.Close()

	now := s.db.now().Format(time.RFC3339)
	for _, c := range chapters {
		if _, err := stmt.ExecContext(ctx, c.TrackedItemID, c.Number, c.Title, c.URL,
			formatNullTime(c.ReleaseDate), now); err != nil {
			return mangawatch.WrapError(mangawatch.EPERSIST, err, "upsert chapter %v", c.Number)
		}
	}

	if err := tx.Commit(); err != nil {
		return mangawatch.WrapError(mangawatch.EPERSIST, err, "commit chapter upsert")
	}
	return nil
}

// FindChapters retrieves chapters matching the filter, highest number first.
func (s *ChapterService) FindChapters(ctx context.Context, filter mangawatch.ChapterFilter) ([]*mangawatch.Chapter, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT tracked_item_id, number, title, url, release_date FROM chapters WHERE 1=1")

	if filter.TrackedItemID != nil {
		query.WriteString(" AND tracked_item_id = ?")
		args = append(args, *filter.TrackedItemID)
	}

	query.WriteString(" ORDER BY number DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []*mangawatch.Chapter
	for rows.Next() {
		var c mangawatch.Chapter
		var releaseDate sql.NullString
		if err := rows.Scan(&c.TrackedItemID, &c.Number, &c.Title, &c.URL, &releaseDate); err != nil {
			return nil, err
		}
		if c.ReleaseDate, err = parseNullRFC3339(releaseDate, "release_date"); err != nil {
			return nil, err
		}
		chapters = append(chapters, &c)
	}

	return chapters, rows.Err()
}
