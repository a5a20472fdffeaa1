package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mangawatch"
)

// Ensure the logging services implement their interfaces.
var (
	_ mangawatch.Scraper  = (*LoggingScraper)(nil)
	_ mangawatch.Notifier = (*LoggingNotifier)(nil)
)

// LoggingScraper wraps a Scraper with logging.
type LoggingScraper struct {
	next   mangawatch.Scraper
	logger *slog.Logger
}

// NewLoggingScraper creates a new LoggingScraper.
func NewLoggingScraper(next mangawatch.Scraper, logger *slog.Logger) *LoggingScraper {
	return &LoggingScraper{next: next, logger: logger}
}

// Scrape delegates to the wrapped scraper and logs the strategy used.
func (s *LoggingScraper) Scrape(ctx context.Context, url string) (item *mangawatch.ScrapedItem, err error) {
	defer func(begin time.Time) {
		if err != nil {
			s.logger.Error("scrape failed",
				"url", url,
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		s.logger.Info("scrape completed",
			"url", url,
			"strategy", item.Strategy,
			"chapters", len(item.Chapters),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.Scrape(ctx, url)
}

// LoggingNotifier wraps a Notifier with logging.
type LoggingNotifier struct {
	next   mangawatch.Notifier
	logger *slog.Logger
}

// NewLoggingNotifier creates a new LoggingNotifier.
func NewLoggingNotifier(next mangawatch.Notifier, logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{next: next, logger: logger}
}

// Notify delegates to the wrapped notifier and logs delivery counts.
func (n *LoggingNotifier) Notify(ctx context.Context, item *mangawatch.TrackedItem, chapters []mangawatch.ScrapedChapter) (res *mangawatch.NotifyResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"item", item.ID,
			"chapters", len(chapters),
			"duration", time.Since(begin),
			"err", err,
		}
		if res != nil {
			attrs = append(attrs, "sent", res.Sent, "failed", res.Failed, "skipped", res.Skipped)
		}
		n.logger.Info("notify", attrs...)
	}(time.Now())
	return n.next.Notify(ctx, item, chapters)
}
