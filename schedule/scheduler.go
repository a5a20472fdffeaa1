// Package schedule runs periodic update checks over all tracked items.
package schedule

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/mangawatch"
)

// Scheduler defaults.
const (
	DefaultInterval = 6 * time.Hour
	DefaultDelay    = 5 * time.Second

	// CadenceWindow is how long after the latest release the next chapter
	// is expected, minus a buffer so early releases are still caught.
	CadenceWindow = 7*24*time.Hour - 6*time.Hour
)

var _ mangawatch.Runner = (*Scheduler)(nil)

// Scheduler checks every tracked item for new chapters, one item at a time.
type Scheduler struct {
	Items         mangawatch.TrackedItemService
	Chapters      mangawatch.ChapterService
	Subscriptions mangawatch.SubscriptionService
	Scraper       mangawatch.Scraper
	Notifier      mangawatch.Notifier
	Metrics       mangawatch.Metrics
	Logger        *slog.Logger

	// Interval between scheduled runs. Defaults to DefaultInterval.
	Interval time.Duration
	// Delay after each scraped item. Defaults to DefaultDelay.
	Delay time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// Sleep pauses between items. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Start runs RunOnce every Interval in the background until Stop is called
// or ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	s.logger().Info("scheduler started", "interval", interval)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.RunOnce(ctx); err != nil {
					s.logger().Error("scheduled update check failed", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the background loop and waits for an in-flight run to end.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger().Info("scheduler stopped")
}

// RunOnce checks every tracked item once. It returns ECONFLICT without a
// result while another run is in progress. Per-item failures are counted
// in the result and never abort the run.
func (s *Scheduler) RunOnce(ctx context.Context) (*mangawatch.RunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, mangawatch.Errorf(mangawatch.ECONFLICT, "update check already in progress")
	}
	defer s.running.Store(false)

	start := s.now()
	res := &mangawatch.RunResult{}
	logger := s.logger()
	defer func() {
		res.Duration = s.now().Sub(start)
		if s.Metrics != nil {
			s.Metrics.ObserveRun(res.Duration)
		}
		logger.Info("update check complete",
			"total", res.Total,
			"checked", res.Checked,
			"updated", res.Updated,
			"skipped", res.Skipped,
			"failed", res.Failed,
			"duration", res.Duration,
		)
	}()

	items, err := s.Items.FindTrackedItems(ctx, mangawatch.TrackedItemFilter{})
	if err != nil {
		logger.Error("failed to list tracked items", "error", err)
		return res, err
	}
	res.Total = len(items)
	logger.Info("starting update check", "items", res.Total)

	for i, item := range items {
		outcome, fresh, err := s.checkItem(ctx, item)
		if s.Metrics != nil {
			s.Metrics.ObserveItem(outcome)
		}

		switch outcome {
		case mangawatch.ItemSkipped:
			res.Skipped++
			continue
		case mangawatch.ItemFailed:
			res.Failed++
			logger.Error("failed to update item", "item", item.ID, "url", item.URL, "error", err)
		case mangawatch.ItemUpdated:
			res.Checked++
			res.Updated++
			res.UpdatedItems = append(res.UpdatedItems, mangawatch.UpdatedItem{
				ID:          item.ID,
				Title:       item.Title,
				NewChapters: fresh,
			})
		default:
			res.Checked++
		}

		// Skipped items and the last item are not followed by a delay.
		if i < len(items)-1 {
			if err := s.sleep(ctx, s.delay()); err != nil {
				return res, err
			}
		}
	}

	return res, nil
}

// checkItem processes a single item and reports the outcome with the
// number of new chapters found.
func (s *Scheduler) checkItem(ctx context.Context, item *mangawatch.TrackedItem) (mangawatch.ItemOutcome, int, error) {
	logger := s.logger().With("item", item.ID, "title", item.Title)

	settings, err := s.Subscriptions.FindSubscriptions(ctx, mangawatch.SubscriptionFilter{TrackedItemID: &item.ID})
	if err != nil {
		return mangawatch.ItemFailed, 0, err
	}
	if !mangawatch.HasActiveReader(settings) {
		logger.Debug("skipping item", "reason", "no active readers")
		return mangawatch.ItemSkipped, 0, nil
	}

	stored, err := s.Chapters.FindChapters(ctx, mangawatch.ChapterFilter{TrackedItemID: &item.ID})
	if err != nil {
		return mangawatch.ItemFailed, 0, err
	}
	if latest := mangawatch.LatestReleaseDate(stored); latest != nil {
		next := latest.Add(CadenceWindow)
		if s.now().Before(next) {
			logger.Debug("skipping item", "reason", "not due", "next", next)
			return mangawatch.ItemSkipped, 0, nil
		}
	}

	scraped, err := s.Scraper.Scrape(ctx, item.URL)
	if err != nil {
		s.markChecked(ctx, item, nil)
		return mangawatch.ItemFailed, 0, err
	}

	outcome, fresh, err := s.storeChapters(ctx, item, stored, scraped.Chapters)
	s.markChecked(ctx, item, scraped)
	return outcome, fresh, err
}

// markChecked records the check time of item. Title and cover are taken
// from scraped when it carries them.
func (s *Scheduler) markChecked(ctx context.Context, item *mangawatch.TrackedItem, scraped *mangawatch.ScrapedItem) {
	now := s.now()
	upd := mangawatch.TrackedItemUpdate{LastCheckedAt: &now}
	if scraped != nil && scraped.Title != "" {
		upd.Title = &scraped.Title
	}
	if scraped != nil && scraped.CoverURL != "" {
		upd.CoverURL = &scraped.CoverURL
	}
	if _, err := s.Items.UpdateTrackedItem(ctx, item.ID, upd); err != nil {
		s.logger().Warn("failed to update last checked time", "item", item.ID, "error", err)
	}
}

// storeChapters persists the chapters not seen before and notifies
// subscribers about them.
func (s *Scheduler) storeChapters(ctx context.Context, item *mangawatch.TrackedItem, stored []*mangawatch.Chapter, scraped []mangawatch.ScrapedChapter) (mangawatch.ItemOutcome, int, error) {
	fresh := mangawatch.NewChapters(mangawatch.ChapterNumbers(stored), scraped)
	if len(fresh) == 0 {
		return mangawatch.ItemChecked, 0, nil
	}

	chapters := make([]*mangawatch.Chapter, 0, len(fresh))
	for _, c := range fresh {
		chapters = append(chapters, c.Chapter(item.ID))
	}
	if err := s.Chapters.UpsertChapters(ctx, chapters); err != nil {
		return mangawatch.ItemFailed, 0, err
	}

	logger := s.logger().With("item", item.ID)
	logger.Info("new chapters found", "title", item.Title, "count", len(fresh))

	if s.Notifier != nil {
		if _, err := s.Notifier.Notify(ctx, item, fresh); err != nil {
			logger.Warn("failed to send notifications", "error", err)
		}
	}

	return mangawatch.ItemUpdated, len(fresh), nil
}

func (s *Scheduler) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Scheduler) delay() time.Duration {
	if s.Delay <= 0 {
		return DefaultDelay
	}
	return s.Delay
}

func (s *Scheduler) sleep(ctx context.Context, d time.Duration) error {
	if s.Sleep != nil {
		return s.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}
