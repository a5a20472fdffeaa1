package mock

import (
	"context"
	"time"

	"github.com/fwojciec/mangawatch"
)

var (
	_ mangawatch.Scraper         = (*Scraper)(nil)
	_ mangawatch.SourceValidator = (*SourceValidator)(nil)
	_ mangawatch.Tracker         = (*Tracker)(nil)
	_ mangawatch.Searcher        = (*Searcher)(nil)
	_ mangawatch.Runner          = (*Runner)(nil)
	_ mangawatch.Notifier        = (*Notifier)(nil)
	_ mangawatch.PushSender      = (*PushSender)(nil)
	_ mangawatch.Metrics         = (*Metrics)(nil)
)

// Scraper is a mock implementation of mangawatch.Scraper.
type Scraper struct {
	ScrapeFn func(ctx context.Context, url string) (*mangawatch.ScrapedItem, error)
}

func (s *Scraper) Scrape(ctx context.Context, url string) (*mangawatch.ScrapedItem, error) {
	return s.ScrapeFn(ctx, url)
}

// SourceValidator is a mock implementation of mangawatch.SourceValidator.
type SourceValidator struct {
	ValidateFn func(ctx context.Context, url string) *mangawatch.ValidationReport
}

func (v *SourceValidator) Validate(ctx context.Context, url string) *mangawatch.ValidationReport {
	return v.ValidateFn(ctx, url)
}

// Tracker is a mock implementation of mangawatch.Tracker.
type Tracker struct {
	TrackFn func(ctx context.Context, url, userID string) (*mangawatch.TrackedItem, error)
}

func (t *Tracker) Track(ctx context.Context, url, userID string) (*mangawatch.TrackedItem, error) {
	return t.TrackFn(ctx, url, userID)
}

// Searcher is a mock implementation of mangawatch.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string) ([]mangawatch.SearchResult, error)
}

func (s *Searcher) Search(ctx context.Context, query string) ([]mangawatch.SearchResult, error) {
	return s.SearchFn(ctx, query)
}

// Runner is a mock implementation of mangawatch.Runner.
type Runner struct {
	RunOnceFn func(ctx context.Context) (*mangawatch.RunResult, error)
}

func (r *Runner) RunOnce(ctx context.Context) (*mangawatch.RunResult, error) {
	return r.RunOnceFn(ctx)
}

// Notifier is a mock implementation of mangawatch.Notifier.
type Notifier struct {
	NotifyFn func(ctx context.Context, item *mangawatch.TrackedItem, chapters []mangawatch.ScrapedChapter) (*mangawatch.NotifyResult, error)
}

func (n *Notifier) Notify(ctx context.Context, item *mangawatch.TrackedItem, chapters []mangawatch.ScrapedChapter) (*mangawatch.NotifyResult, error) {
	return n.NotifyFn(ctx, item, chapters)
}

// PushSender is a mock implementation of mangawatch.PushSender.
type PushSender struct {
	SendFn func(ctx context.Context, token string, payload mangawatch.PushPayload) error
}

func (s *PushSender) Send(ctx context.Context, token string, payload mangawatch.PushPayload) error {
	return s.SendFn(ctx, token, payload)
}

// Metrics is a mock implementation of mangawatch.Metrics. Nil funcs are
// no-ops.
type Metrics struct {
	ObserveScrapeFn   func(strategy mangawatch.Strategy, err error)
	ObserveItemFn     func(outcome mangawatch.ItemOutcome)
	ObserveRunFn      func(d time.Duration)
	ObserveDeliveryFn func(err error)
}

func (m *Metrics) ObserveScrape(strategy mangawatch.Strategy, err error) {
	if m.ObserveScrapeFn != nil {
		m.ObserveScrapeFn(strategy, err)
	}
}

func (m *Metrics) ObserveItem(outcome mangawatch.ItemOutcome) {
	if m.ObserveItemFn != nil {
		m.ObserveItemFn(outcome)
	}
}

func (m *Metrics) ObserveRun(d time.Duration) {
	if m.ObserveRunFn != nil {
		m.ObserveRunFn(d)
	}
}

func (m *Metrics) ObserveDelivery(err error) {
	if m.ObserveDeliveryFn != nil {
		m.ObserveDeliveryFn(err)
	}
}
