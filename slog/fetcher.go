package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mangawatch"
)

// Ensure the logging fetchers implement their interfaces.
var (
	_ mangawatch.Fetcher         = (*LoggingFetcher)(nil)
	_ mangawatch.ProviderFetcher = (*LoggingProviderFetcher)(nil)
	_ mangawatch.LinkChecker     = (*LoggingLinkChecker)(nil)
)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   mangawatch.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next mangawatch.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("direct fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// LoggingProviderFetcher wraps a ProviderFetcher with logging.
type LoggingProviderFetcher struct {
	next   mangawatch.ProviderFetcher
	logger *slog.Logger
}

// NewLoggingProviderFetcher creates a new LoggingProviderFetcher.
func NewLoggingProviderFetcher(next mangawatch.ProviderFetcher, logger *slog.Logger) *LoggingProviderFetcher {
	return &LoggingProviderFetcher{next: next, logger: logger}
}

// Fetch logs the provider call and delegates to the wrapped fetcher.
func (f *LoggingProviderFetcher) Fetch(ctx context.Context, url string, opts mangawatch.ScrapeOptions) (markdown string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("provider fetch",
			"url", url,
			"only_main_content", opts.OnlyMainContent,
			"actions", len(opts.Actions),
			"bytes", len(markdown),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url, opts)
}

// LoggingLinkChecker wraps a LinkChecker with debug logging.
type LoggingLinkChecker struct {
	next   mangawatch.LinkChecker
	logger *slog.Logger
}

// NewLoggingLinkChecker creates a new LoggingLinkChecker.
func NewLoggingLinkChecker(next mangawatch.LinkChecker, logger *slog.Logger) *LoggingLinkChecker {
	return &LoggingLinkChecker{next: next, logger: logger}
}

// CheckLink delegates to the wrapped checker and logs the result.
func (c *LoggingLinkChecker) CheckLink(ctx context.Context, url string) (err error) {
	defer func(begin time.Time) {
		c.logger.Debug("link check",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.CheckLink(ctx, url)
}
