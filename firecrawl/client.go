// Package firecrawl implements mangawatch.ProviderFetcher and
// mangawatch.Searcher against the Firecrawl scrape API.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/mangawatch"
)

// DefaultBaseURL is the hosted Firecrawl API.
const DefaultBaseURL = "https://api.firecrawl.dev"

// DefaultTimeout bounds a single provider call. Rendering with actions
// routinely takes tens of seconds.
const DefaultTimeout = 90 * time.Second

// SearchLimit is the number of results requested per search.
const SearchLimit = 5

// Compile-time interface verification.
var (
	_ mangawatch.ProviderFetcher = (*Client)(nil)
	_ mangawatch.Searcher        = (*Client)(nil)
)

// Client calls the Firecrawl API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a Client. Returns ECONFIG when apiKey is empty.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, mangawatch.Errorf(mangawatch.ECONFIG, "FIRECRAWL_API_KEY is missing")
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type scrapeRequest struct {
	URL             string              `json:"url"`
	Formats         []string            `json:"formats"`
	OnlyMainContent bool                `json:"onlyMainContent"`
	Actions         []mangawatch.Action `json:"actions,omitempty"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
}

// Fetch renders url through Firecrawl and returns the page as markdown.
func (c *Client) Fetch(ctx context.Context, url string, opts mangawatch.ScrapeOptions) (string, error) {
	req := scrapeRequest{
		URL:             url,
		Formats:         []string{"markdown"},
		OnlyMainContent: opts.OnlyMainContent,
		Actions:         opts.Actions,
	}

	var resp scrapeResponse
	if err := c.post(ctx, "/v1/scrape", req, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", mangawatch.Errorf(mangawatch.EPROVIDER, "firecrawl scrape failed: %s", describe(resp.Error))
	}
	return resp.Data.Markdown, nil
}

type searchRequest struct {
	Query         string `json:"query"`
	Limit         int    `json:"limit"`
	Lang          string `json:"lang"`
	ScrapeOptions struct {
		Formats []string `json:"formats"`
	} `json:"scrapeOptions"`
}

type searchResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
	} `json:"data"`
}

// Search looks up reading sites carrying query. Results without a URL
// are dropped and untitled ones get a placeholder title.
func (c *Client) Search(ctx context.Context, query string) ([]mangawatch.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, mangawatch.Errorf(mangawatch.EINVALID, "search query required")
	}

	req := searchRequest{
		Query: query + " manga online capitulos",
		Limit: SearchLimit,
		Lang:  "es",
	}
	req.ScrapeOptions.Formats = []string{"markdown"}

	var resp searchResponse
	if err := c.post(ctx, "/v1/search", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, mangawatch.Errorf(mangawatch.EPROVIDER, "firecrawl search failed: %s", describe(resp.Error))
	}

	results := make([]mangawatch.SearchResult, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.URL == "" {
			continue
		}
		title := d.Title
		if title == "" {
			title = "Sin título"
		}
		results = append(results, mangawatch.SearchResult{Title: title, URL: d.URL, Description: d.Description})
	}
	return results, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return mangawatch.WrapError(mangawatch.EPROVIDER, err, "build firecrawl request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return mangawatch.WrapError(mangawatch.EPROVIDER, err, "firecrawl request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return mangawatch.WrapError(mangawatch.EPROVIDER, err, "read firecrawl response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mangawatch.Errorf(mangawatch.EPROVIDER, "firecrawl HTTP %d: %s", resp.StatusCode, snippet(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return mangawatch.WrapError(mangawatch.EPROVIDER, err, "decode firecrawl response")
	}
	return nil
}

func describe(msg string) string {
	if msg == "" {
		return "unknown error"
	}
	return msg
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
