package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mangawatch"
)

// Ensure LoggingExtractor implements mangawatch.Extractor.
var _ mangawatch.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging of chapter counts and
// model warnings.
type LoggingExtractor struct {
	next   mangawatch.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next mangawatch.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) Extract(ctx context.Context, content, sourceURL string, kind mangawatch.ContentKind) (item *mangawatch.ScrapedItem, err error) {
	defer func(begin time.Time) {
		chapters := 0
		if item != nil {
			chapters = len(item.Chapters)
			for _, w := range item.Warnings {
				e.logger.Warn("extraction warning", "url", sourceURL, "warning", w)
			}
		}
		e.logger.Debug("extract",
			"url", sourceURL,
			"kind", kind,
			"bytes", len(content),
			"chapters", chapters,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(ctx, content, sourceURL, kind)
}
