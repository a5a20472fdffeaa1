package mangawatch

import "context"

// ValidationReport is the human-readable health check of a source URL.
type ValidationReport struct {
	IsValid bool         `json:"isValid"`
	Report  []string     `json:"report"`
	Data    *ScrapedItem `json:"data"`
}

// SourceValidator checks whether a source URL yields usable data.
type SourceValidator interface {
	// Validate never fails; scrape errors become CRITICAL ERROR lines.
	Validate(ctx context.Context, url string) *ValidationReport
}

// LinkChecker verifies that a URL is reachable without downloading it.
type LinkChecker interface {
	CheckLink(ctx context.Context, url string) error
}

// Tracker starts tracking a new item page.
type Tracker interface {
	// Track scrapes url, stores the item with its chapters and, when userID
	// is not empty, subscribes the user with notifications enabled.
	Track(ctx context.Context, url, userID string) (*TrackedItem, error)
}
