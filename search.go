package mangawatch

import "context"

// SearchResult is a candidate source page for a title query.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Searcher finds candidate source pages for a title.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}
