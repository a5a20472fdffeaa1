// Package rod implements mangawatch.ProviderFetcher with a local headless
// Chrome, as an alternative to a hosted scrape provider.
package rod

import (
	"context"
	"time"

	"github.com/fwojciec/mangawatch"
)

// DefaultFetchTimeout bounds one render including page actions.
const DefaultFetchTimeout = 90 * time.Second

// Ensure Fetcher implements mangawatch.ProviderFetcher at compile time.
var _ mangawatch.ProviderFetcher = (*Fetcher)(nil)

// Fetcher renders a page, optionally narrows it to its main content and
// converts the result to markdown.
type Fetcher struct {
	renderer  Renderer
	extractor mangawatch.MainContentExtractor
	converter mangawatch.Converter
	timeout   time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-fetch timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a Fetcher. extractor is used when the scrape options
// ask for main content only.
func NewFetcher(renderer Renderer, extractor mangawatch.MainContentExtractor, converter mangawatch.Converter, opts ...Option) *Fetcher {
	f := &Fetcher{
		renderer:  renderer,
		extractor: extractor,
		converter: converter,
		timeout:   DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch renders url and returns markdown. Every failure is EPROVIDER.
func (f *Fetcher) Fetch(ctx context.Context, url string, opts mangawatch.ScrapeOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	html, err := f.renderer.Render(ctx, url, opts.Actions)
	if err != nil {
		return "", mangawatch.WrapError(mangawatch.EPROVIDER, err, "render %s", url)
	}

	if opts.OnlyMainContent && f.extractor != nil {
		main, err := f.extractor.ExtractMainContent(html)
		if err != nil {
			return "", mangawatch.WrapError(mangawatch.EPROVIDER, err, "extract main content of %s", url)
		}
		html = main
	}

	md, err := f.converter.Convert(html, url)
	if err != nil {
		return "", mangawatch.WrapError(mangawatch.EPROVIDER, err, "convert %s", url)
	}
	return md, nil
}
