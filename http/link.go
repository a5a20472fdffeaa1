package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/mangawatch"
)

// DefaultLinkTimeout bounds a single reachability check.
const DefaultLinkTimeout = 10 * time.Second

var _ mangawatch.LinkChecker = (*LinkChecker)(nil)

// LinkChecker checks URLs with a HEAD request.
type LinkChecker struct {
	client *http.Client
}

// NewLinkChecker creates a LinkChecker. If client is nil, a client with
// DefaultLinkTimeout is used.
func NewLinkChecker(client *http.Client) *LinkChecker {
	if client == nil {
		client = &http.Client{Timeout: DefaultLinkTimeout}
	}
	return &LinkChecker{client: client}
}

// CheckLink returns EFETCH unless url answers HEAD with a 2xx or 3xx status.
func (c *LinkChecker) CheckLink(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return mangawatch.WrapError(mangawatch.EFETCH, err, "build request for %s", url)
	}
	setBrowserHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return mangawatch.WrapError(mangawatch.EFETCH, err, "head %s", url)
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return mangawatch.Errorf(mangawatch.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}
	return nil
}
