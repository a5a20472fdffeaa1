package mangawatch

import (
	"context"
	"time"
)

// ChapterNumberUnknown marks a chapter whose number could not be determined.
const ChapterNumberUnknown = -1.0

// Chapter represents a stored chapter of a tracked item.
// The pair (TrackedItemID, Number) identifies a chapter.
type Chapter struct {
	TrackedItemID string     `json:"trackedItemId"`
	Number        float64    `json:"number"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	ReleaseDate   *time.Time `json:"releaseDate,omitempty"`
}

// Validate returns an error if the chapter contains invalid fields.
func (c *Chapter) Validate() error {
	if c.TrackedItemID == "" {
		return Errorf(EINVALID, "chapter tracked item ID required")
	}
	return nil
}

// ChapterService represents a service for managing chapters.
type ChapterService interface {
	// UpsertChapters inserts chapters, overwriting title, URL and release
	// date of rows that already exist for the same item and number.
	UpsertChapters(ctx context.Context, chapters []*Chapter) error

	// FindChapters retrieves chapters matching the filter, ordered by
	// number descending.
	FindChapters(ctx context.Context, filter ChapterFilter) ([]*Chapter, error)
}

// ChapterFilter represents a filter for FindChapters.
type ChapterFilter struct {
	TrackedItemID *string `json:"trackedItemId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ChapterNumbers returns the set of chapter numbers in chapters.
func ChapterNumbers(chapters []*Chapter) map[float64]struct{} {
	numbers := make(map[float64]struct{}, len(chapters))
	for _, c := range chapters {
		numbers[c.Number] = struct{}{}
	}
	return numbers
}

// LatestReleaseDate returns the most recent release date among chapters,
// or nil when no chapter has one.
func LatestReleaseDate(chapters []*Chapter) *time.Time {
	var latest *time.Time
	for _, c := range chapters {
		if c.ReleaseDate == nil {
			continue
		}
		if latest == nil || c.ReleaseDate.After(*latest) {
			latest = c.ReleaseDate
		}
	}
	return latest
}

// NewChapters returns the scraped chapters whose number is not in existing,
// preserving scraped order. Repeated numbers within scraped collapse to the
// first occurrence. Edits to already-known chapter numbers are not detected.
func NewChapters(existing map[float64]struct{}, scraped []ScrapedChapter) []ScrapedChapter {
	seen := make(map[float64]struct{}, len(scraped))
	var fresh []ScrapedChapter
	for _, c := range scraped {
		if _, ok := existing[c.Number]; ok {
			continue
		}
		if _, ok := seen[c.Number]; ok {
			continue
		}
		seen[c.Number] = struct{}{}
		fresh = append(fresh, c)
	}
	return fresh
}

// Newest returns the chapter with the highest known number. Chapters with
// an unknown number are only returned when no other chapter exists.
func Newest(chapters []ScrapedChapter) (ScrapedChapter, bool) {
	if len(chapters) == 0 {
		return ScrapedChapter{}, false
	}
	best := chapters[0]
	for _, c := range chapters[1:] {
		if best.Number == ChapterNumberUnknown || (c.Number != ChapterNumberUnknown && c.Number > best.Number) {
			best = c
		}
	}
	return best, true
}
