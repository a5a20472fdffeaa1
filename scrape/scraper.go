// Package scrape turns an item page URL into a structured chapter list.
// It picks between a cheap direct fetch and a heavier scrape provider per
// domain, remembering which one worked last.
package scrape

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/mangawatch"
)

var _ mangawatch.Scraper = (*Scraper)(nil)

// Scraper orchestrates the direct and provider fetch tiers.
type Scraper struct {
	Fetcher    mangawatch.Fetcher
	Provider   mangawatch.ProviderFetcher
	Extractor  mangawatch.Extractor
	Strategies mangawatch.StrategyStore
	// Pruner, when set, strips non-content tags from directly fetched HTML
	// before extraction.
	Pruner  mangawatch.Pruner
	Rules   mangawatch.DomainRules
	Metrics mangawatch.Metrics
	Logger  *slog.Logger
}

// Scrape fetches url and extracts its title, cover and chapters.
//
// Domains whose stored strategy is StrategyFirecrawl go straight to the
// provider. Everything else tries the direct fetcher first and falls back
// to the provider when the direct tier fails or finds no chapters.
func (s *Scraper) Scrape(ctx context.Context, url string) (*mangawatch.ScrapedItem, error) {
	if s.Provider == nil {
		return nil, mangawatch.Errorf(mangawatch.ECONFIG, "scrape provider not configured")
	}
	if s.Extractor == nil {
		return nil, mangawatch.Errorf(mangawatch.ECONFIG, "extractor not configured")
	}

	domain, err := mangawatch.DomainOf(url)
	if err != nil {
		return nil, err
	}
	logger := s.logger().With("url", url, "domain", domain)

	known := s.knownStrategy(ctx, domain, logger)

	if known != mangawatch.StrategyFirecrawl && s.Fetcher != nil {
		item, err := s.scrapeDirect(ctx, url)
		if err == nil {
			s.remember(ctx, domain, mangawatch.StrategyDirectFetch, logger)
			s.observe(mangawatch.StrategyDirectFetch, nil)
			logger.Debug("direct fetch succeeded", "chapters", len(item.Chapters))
			return item, nil
		}
		s.observe(mangawatch.StrategyDirectFetch, err)
		logger.Debug("direct fetch failed, falling back to provider", "reason", err)
	} else {
		logger.Debug("skipping direct fetch", "strategy", known)
	}

	item, err := s.scrapeProvider(ctx, url, domain)
	s.observe(mangawatch.StrategyFirecrawl, err)
	if err != nil {
		return nil, mangawatch.WrapError(mangawatch.ESCRAPE, err, "scraping failed")
	}
	if len(item.Chapters) > 0 {
		s.remember(ctx, domain, mangawatch.StrategyFirecrawl, logger)
	}
	logger.Debug("provider fetch succeeded", "chapters", len(item.Chapters))
	return item, nil
}

func (s *Scraper) scrapeDirect(ctx context.Context, url string) (*mangawatch.ScrapedItem, error) {
	html, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if s.Pruner != nil {
		pruned, err := s.Pruner.Prune(html, url)
		if err != nil {
			return nil, err
		}
		html = pruned
	}

	item, err := s.Extractor.Extract(ctx, html, url, mangawatch.ContentHTML)
	if err != nil {
		return nil, err
	}
	if len(item.Chapters) == 0 {
		return nil, mangawatch.Errorf(mangawatch.EFETCH, "direct fetch returned 0 chapters, page is likely rendered by JavaScript")
	}
	item.Strategy = mangawatch.StrategyDirectFetch
	return item, nil
}

func (s *Scraper) scrapeProvider(ctx context.Context, url, domain string) (*mangawatch.ScrapedItem, error) {
	opts := s.rules().Resolve(domain)

	markdown, err := s.Provider.Fetch(ctx, url, opts)
	if err != nil {
		return nil, err
	}

	item, err := s.Extractor.Extract(ctx, mangawatch.Sanitize(markdown), url, mangawatch.ContentMarkdown)
	if err != nil {
		return nil, err
	}
	item.Strategy = mangawatch.StrategyFirecrawl
	return item, nil
}

// knownStrategy treats lookup failures as an unknown strategy.
func (s *Scraper) knownStrategy(ctx context.Context, domain string, logger *slog.Logger) mangawatch.Strategy {
	if s.Strategies == nil {
		return mangawatch.StrategyUnknown
	}
	strategy, err := s.Strategies.GetStrategy(ctx, domain)
	if err != nil {
		logger.Warn("failed to load domain strategy", "error", err)
		return mangawatch.StrategyUnknown
	}
	return strategy
}

func (s *Scraper) remember(ctx context.Context, domain string, strategy mangawatch.Strategy, logger *slog.Logger) {
	if s.Strategies == nil {
		return
	}
	if err := s.Strategies.SetStrategy(ctx, domain, strategy); err != nil {
		logger.Warn("failed to save domain strategy", "strategy", strategy, "error", err)
	}
}

func (s *Scraper) observe(strategy mangawatch.Strategy, err error) {
	if s.Metrics != nil {
		s.Metrics.ObserveScrape(strategy, err)
	}
}

func (s *Scraper) rules() mangawatch.DomainRules {
	if s.Rules == nil {
		return mangawatch.DefaultDomainRules()
	}
	return s.Rules
}

func (s *Scraper) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}
