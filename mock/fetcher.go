package mock

import (
	"context"

	"github.com/fwojciec/mangawatch"
)

var (
	_ mangawatch.Fetcher         = (*Fetcher)(nil)
	_ mangawatch.ProviderFetcher = (*ProviderFetcher)(nil)
	_ mangawatch.LinkChecker     = (*LinkChecker)(nil)
)

// Fetcher is a mock implementation of mangawatch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

// ProviderFetcher is a mock implementation of mangawatch.ProviderFetcher.
type ProviderFetcher struct {
	FetchFn func(ctx context.Context, url string, opts mangawatch.ScrapeOptions) (string, error)
}

func (f *ProviderFetcher) Fetch(ctx context.Context, url string, opts mangawatch.ScrapeOptions) (string, error) {
	return f.FetchFn(ctx, url, opts)
}

// LinkChecker is a mock implementation of mangawatch.LinkChecker.
type LinkChecker struct {
	CheckLinkFn func(ctx context.Context, url string) error
}

func (c *LinkChecker) CheckLink(ctx context.Context, url string) error {
	return c.CheckLinkFn(ctx, url)
}
