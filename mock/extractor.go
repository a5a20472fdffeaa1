package mock

import (
	"context"

	"github.com/fwojciec/mangawatch"
)

var (
	_ mangawatch.Extractor            = (*Extractor)(nil)
	_ mangawatch.MainContentExtractor = (*MainContentExtractor)(nil)
	_ mangawatch.Converter            = (*Converter)(nil)
	_ mangawatch.Pruner               = (*Pruner)(nil)
)

// Extractor is a mock implementation of mangawatch.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, content, sourceURL string, kind mangawatch.ContentKind) (*mangawatch.ScrapedItem, error)
}

func (e *Extractor) Extract(ctx context.Context, content, sourceURL string, kind mangawatch.ContentKind) (*mangawatch.ScrapedItem, error) {
	return e.ExtractFn(ctx, content, sourceURL, kind)
}

// MainContentExtractor is a mock implementation of mangawatch.MainContentExtractor.
type MainContentExtractor struct {
	ExtractMainContentFn func(html string) (string, error)
}

func (e *MainContentExtractor) ExtractMainContent(html string) (string, error) {
	return e.ExtractMainContentFn(html)
}

// Converter is a mock implementation of mangawatch.Converter.
type Converter struct {
	ConvertFn func(html, baseURL string) (string, error)
}

func (c *Converter) Convert(html, baseURL string) (string, error) {
	return c.ConvertFn(html, baseURL)
}

// Pruner is a mock implementation of mangawatch.Pruner.
type Pruner struct {
	PruneFn func(html, baseURL string) (string, error)
}

func (p *Pruner) Prune(html, baseURL string) (string, error) {
	return p.PruneFn(html, baseURL)
}
