// Package http provides plain HTTP implementations of mangawatch.Fetcher
// and mangawatch.LinkChecker for pages that don't require JavaScript.
package http

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/mangawatch"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 5 * time.Second

// MaxBodySize caps the number of bytes read from a response.
const MaxBodySize = 10 << 20

// Browser-like request headers. Many sites reject the default Go client.
const (
	UserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	Accept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	AcceptLanguage = "en-US,en;q=0.5"
)

// ChallengeMarkers are substrings identifying anti-bot interstitial pages.
var ChallengeMarkers = []string{
	"Just a moment...",
	"Enable JavaScript",
	"cf-browser-verification",
	"challenge-platform",
}

// Ensure Fetcher implements mangawatch.Fetcher at compile time.
var _ mangawatch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using a single GET request.
// Unlike rod.Fetcher, this does not execute JavaScript.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (5s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithClient sets the underlying HTTP client. Its timeout is replaced by
// the configured fetch timeout.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{}
	}
	client := *f.client
	client.Timeout = f.timeout
	f.client = &client

	return f
}

// Fetch retrieves the page at url and returns its body decoded to UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", mangawatch.WrapError(mangawatch.EFETCH, err, "build request for %s", url)
	}
	setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", mangawatch.WrapError(mangawatch.EFETCH, err, "fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", mangawatch.Errorf(mangawatch.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextual(contentType) {
		return "", mangawatch.Errorf(mangawatch.EFETCH, "unexpected content type %q for %s", contentType, url)
	}

	r, err := charset.NewReader(io.LimitReader(resp.Body, MaxBodySize), contentType)
	if err != nil {
		return "", mangawatch.WrapError(mangawatch.EFETCH, err, "decode %s", url)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", mangawatch.WrapError(mangawatch.EFETCH, err, "read %s", url)
	}

	html := string(body)
	if strings.TrimSpace(html) == "" {
		return "", mangawatch.Errorf(mangawatch.EFETCH, "empty body for %s", url)
	}
	if marker, ok := challengeMarker(html); ok {
		return "", mangawatch.Errorf(mangawatch.EBLOCKED, "anti-bot challenge at %s (%q)", url, marker)
	}

	return html, nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", Accept)
	req.Header.Set("Accept-Language", AcceptLanguage)
}

// isTextual reports whether contentType describes a text document. A
// missing header is accepted.
func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/") ||
		mediaType == "application/xhtml+xml" ||
		mediaType == "application/xml"
}

func challengeMarker(html string) (string, bool) {
	for _, m := range ChallengeMarkers {
		if strings.Contains(html, m) {
			return m, true
		}
	}
	return "", false
}

