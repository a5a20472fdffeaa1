package mangawatch

import (
	"context"
	"time"
)

// ContentKind describes the format of content handed to an Extractor.
type ContentKind string

// Content kinds.
const (
	ContentHTML     ContentKind = "html"
	ContentMarkdown ContentKind = "markdown"
)

// ScrapedChapter is a chapter as extracted from a source page.
type ScrapedChapter struct {
	Number      float64    `json:"number"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
}

// Chapter converts c into a stored chapter of the given item.
func (c ScrapedChapter) Chapter(itemID string) *Chapter {
	return &Chapter{
		TrackedItemID: itemID,
		Number:        c.Number,
		Title:         c.Title,
		URL:           c.URL,
		ReleaseDate:   c.ReleaseDate,
	}
}

// ScrapedItem is the structured result of scraping one item page.
type ScrapedItem struct {
	Title    string           `json:"title"`
	CoverURL string           `json:"cover_url"`
	Chapters []ScrapedChapter `json:"chapters"`

	// Strategy is the fetch strategy that produced this result.
	Strategy Strategy `json:"strategy,omitempty"`

	// Warnings holds non-fatal problems, such as EMALFORMED model output.
	Warnings []error `json:"-"`
}

// Extractor turns page content into a structured chapter list.
type Extractor interface {
	// Extract parses content fetched from sourceURL. Malformed model output
	// yields an empty chapter list and an EMALFORMED warning, not an error.
	Extract(ctx context.Context, content, sourceURL string, kind ContentKind) (*ScrapedItem, error)
}

// MainContentExtractor narrows an HTML page to its main content,
// removing navigation, footers and other boilerplate.
type MainContentExtractor interface {
	ExtractMainContent(html string) (string, error)
}

// Pruner strips tags that carry no extractable text (scripts, styles,
// inline SVG) from an HTML page and makes its links absolute against
// baseURL.
type Pruner interface {
	Prune(html, baseURL string) (string, error)
}
