// Package gemini implements mangawatch.Extractor using Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/mangawatch"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used for extraction.
const DefaultModel = "gemini-2.0-flash"

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 90 * time.Second

// Content limits in runes, applied before the model call.
const (
	MaxHTMLRunes     = 200000
	MaxMarkdownRunes = 150000
)

// MaxChapters is the number of latest chapters the model is asked for.
const MaxChapters = 20

// Ensure Extractor implements mangawatch.Extractor at compile time.
var _ mangawatch.Extractor = (*Extractor)(nil)

// Extractor asks Gemini to turn page content into a chapter list.
type Extractor struct {
	client  *genai.Client
	model   string
	timeout time.Duration

	// Now returns the current time. Relative release dates are resolved
	// against its date.
	Now func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithModel sets the Gemini model name.
func WithModel(model string) Option {
	return func(e *Extractor) {
		if model != "" {
			e.model = model
		}
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		e.timeout = d
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(client *genai.Client, opts ...Option) *Extractor {
	e := &Extractor{
		client:  client,
		model:   DefaultModel,
		timeout: DefaultTimeout,
		Now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract sends content to Gemini and parses the structured reply.
func (e *Extractor) Extract(ctx context.Context, content, sourceURL string, kind mangawatch.ContentKind) (*mangawatch.ScrapedItem, error) {
	if e.client == nil {
		return nil, mangawatch.Errorf(mangawatch.ECONFIG, "gemini client not configured")
	}

	today := e.Now()
	prompt := BuildUserPrompt(Truncate(content, kind), sourceURL, kind, today)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := e.client.Models.GenerateContent(ctx, e.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return nil, mangawatch.WrapError(mangawatch.EPROVIDER, err, "gemini extraction for %s", sourceURL)
	}
	if result == nil {
		return nil, mangawatch.Errorf(mangawatch.EINTERNAL, "gemini returned nil result")
	}

	return ParseResponse(result.Text(), today), nil
}

// Truncate cuts content to the rune limit for its kind.
func Truncate(content string, kind mangawatch.ContentKind) string {
	limit := MaxMarkdownRunes
	if kind == mangawatch.ContentHTML {
		limit = MaxHTMLRunes
	}
	n := 0
	for i := range content {
		if n == limit {
			return content[:i]
		}
		n++
	}
	return content
}

// BuildConfig returns the GenerateContentConfig for extraction calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a manga scraper parser. You read a manga page and reply with its title, cover image and latest chapters as JSON only.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":     {Type: genai.TypeString},
			"cover_url": {Type: genai.TypeString},
			"chapters": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"number":       {Type: genai.TypeNumber},
						"title":        {Type: genai.TypeString},
						"url":          {Type: genai.TypeString},
						"release_date": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
					},
					Required: []string{"number", "title", "url"},
				},
			},
		},
		Required: []string{"title", "cover_url", "chapters"},
	}
}

// BuildUserPrompt builds the extraction prompt for content fetched from
// sourceURL. today anchors relative release dates.
func BuildUserPrompt(content, sourceURL string, kind mangawatch.ContentKind, today time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Extract information from the provided %s content.\n\n", kind)
	sb.WriteString(`Return EXACTLY this JSON structure:
{
  "title": "String",
  "cover_url": "String",
  "chapters": [
    {
      "number": Number,
      "title": "String",
      "url": "String",
      "release_date": "YYYY-MM-DD"
    }
  ]
}

Rules:
- "number" MUST be a number (e.g. 10.5). If unknown, use -1.
`)
	fmt.Fprintf(&sb, "- \"url\" MUST be absolute. Base URL: %s\n", sourceURL)
	sb.WriteString("- Sort by number descending.\n")
	fmt.Fprintf(&sb, "- Limit to latest %d chapters.\n", MaxChapters)
	fmt.Fprintf(&sb, "- \"release_date\" MUST be in YYYY-MM-DD format. Today is %s.\n", today.Format(mangawatch.ReleaseDateLayout))
	sb.WriteString(`  - If you see "hace X días" or "X days ago", calculate the actual date.
  - If you see "ayer" or "yesterday", use yesterday's date.
  - If you see "hoy" or "today", use today's date.
  - If you see a date like "Dec 15" or "15 Dec", use the current year.
  - If you see "hace X horas" or "X hours ago", use today's date.
  - If no date is visible, leave release_date as null (not "YYYY-MM-DD").

`)
	fmt.Fprintf(&sb, "Content (%s):\n%s", kind, content)
	return sb.String()
}
