package schedule_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/mangawatch"
	"github.com/fwojciec/mangawatch/mock"
	"github.com/fwojciec/mangawatch/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

// fixture wires a Scheduler to in-memory mocks. Stored chapters are keyed
// by item ID.
type fixture struct {
	mu        sync.Mutex
	items     []*mangawatch.TrackedItem
	settings  map[string][]*mangawatch.SubscriptionSetting
	stored    map[string][]*mangawatch.Chapter
	scraped   map[string]*mangawatch.ScrapedItem
	upserted  []*mangawatch.Chapter
	notified  map[string][]mangawatch.ScrapedChapter
	updates   map[string]mangawatch.TrackedItemUpdate
	scrapes   []string
	sleeps    int
	upsertErr error
}

func newFixture(items ...*mangawatch.TrackedItem) *fixture {
	return &fixture{
		items:    items,
		settings: make(map[string][]*mangawatch.SubscriptionSetting),
		stored:   make(map[string][]*mangawatch.Chapter),
		scraped:  make(map[string]*mangawatch.ScrapedItem),
		notified: make(map[string][]mangawatch.ScrapedChapter),
		updates:  make(map[string]mangawatch.TrackedItemUpdate),
	}
}

func (f *fixture) scheduler() *schedule.Scheduler {
	return &schedule.Scheduler{
		Items: &mock.TrackedItemService{
			FindTrackedItemsFn: func(context.Context, mangawatch.TrackedItemFilter) ([]*mangawatch.TrackedItem, error) {
				return f.items, nil
			},
			UpdateTrackedItemFn: func(_ context.Context, id string, upd mangawatch.TrackedItemUpdate) (*mangawatch.TrackedItem, error) {
				f.mu.Lock()
				defer f.mu.Unlock()
				f.updates[id] = upd
				return &mangawatch.TrackedItem{ID: id}, nil
			},
		},
		Subscriptions: &mock.SubscriptionService{
			FindSubscriptionsFn: func(_ context.Context, filter mangawatch.SubscriptionFilter) ([]*mangawatch.SubscriptionSetting, error) {
				return f.settings[*filter.TrackedItemID], nil
			},
		},
		Chapters: &mock.ChapterService{
			FindChaptersFn: func(_ context.Context, filter mangawatch.ChapterFilter) ([]*mangawatch.Chapter, error) {
				return f.stored[*filter.TrackedItemID], nil
			},
			UpsertChaptersFn: func(_ context.Context, chapters []*mangawatch.Chapter) error {
				if f.upsertErr != nil {
					return f.upsertErr
				}
				f.mu.Lock()
				defer f.mu.Unlock()
				f.upserted = append(f.upserted, chapters...)
				return nil
			},
		},
		Scraper: &mock.Scraper{
			ScrapeFn: func(_ context.Context, url string) (*mangawatch.ScrapedItem, error) {
				f.mu.Lock()
				f.scrapes = append(f.scrapes, url)
				f.mu.Unlock()
				item, ok := f.scraped[url]
				if !ok {
					return nil, mangawatch.Errorf(mangawatch.ESCRAPE, "scraping failed: blocked")
				}
				return item, nil
			},
		},
		Notifier: &mock.Notifier{
			NotifyFn: func(_ context.Context, item *mangawatch.TrackedItem, chapters []mangawatch.ScrapedChapter) (*mangawatch.NotifyResult, error) {
				f.mu.Lock()
				defer f.mu.Unlock()
				f.notified[item.ID] = chapters
				return &mangawatch.NotifyResult{Sent: 1}, nil
			},
		},
		Now: func() time.Time { return now },
		Sleep: func(context.Context, time.Duration) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.sleeps++
			return nil
		},
	}
}

func released(t time.Time) *mangawatch.Chapter {
	return &mangawatch.Chapter{Number: 1, ReleaseDate: &t}
}

func TestScheduler_RunOnce(t *testing.T) {
	t.Parallel()

	t.Run("detects, stores and announces new chapters", func(t *testing.T) {
		t.Parallel()

		item := &mangawatch.TrackedItem{ID: "m1", Title: "One", URL: "https://a.example/m1"}
		f := newFixture(item)
		f.stored["m1"] = []*mangawatch.Chapter{{Number: 1}, {Number: 2}, {Number: 3}}
		f.scraped[item.URL] = &mangawatch.ScrapedItem{
			Title:    "One (new title)",
			CoverURL: "https://a.example/c.jpg",
			Chapters: []mangawatch.ScrapedChapter{{Number: 4}, {Number: 3}, {Number: 2}},
		}

		res, err := f.scheduler().RunOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Equal(t, 1, res.Checked)
		assert.Equal(t, 1, res.Updated)
		assert.Equal(t, []mangawatch.UpdatedItem{{ID: "m1", Title: "One", NewChapters: 1}}, res.UpdatedItems)
		require.Len(t, f.upserted, 1)
		assert.Equal(t, 4.0, f.upserted[0].Number)
		assert.Equal(t, "m1", f.upserted[0].TrackedItemID)
		assert.Equal(t, []mangawatch.ScrapedChapter{{Number: 4}}, f.notified["m1"])

		upd := f.updates["m1"]
		require.NotNil(t, upd.LastCheckedAt)
		assert.Equal(t, now, *upd.LastCheckedAt)
		require.NotNil(t, upd.Title)
		assert.Equal(t, "One (new title)", *upd.Title)
	})

	t.Run("skips items without active readers", func(t *testing.T) {
		t.Parallel()

		item := &mangawatch.TrackedItem{ID: "m1", URL: "https://a.example/m1"}
		f := newFixture(item)
		f.settings["m1"] = []*mangawatch.SubscriptionSetting{
			{UserID: "u1", ReadingStatus: mangawatch.ReadingStatusCompleted},
			{UserID: "u2", ReadingStatus: mangawatch.ReadingStatusDropped},
		}

		res, err := f.scheduler().RunOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, res.Skipped)
		assert.Empty(t, f.scrapes)
		assert.Empty(t, f.updates)
	})

	t.Run("checks items with one active reader", func(t *testing.T) {
		t.Parallel()

		item := &mangawatch.TrackedItem{ID: "m1", URL: "https://a.example/m1"}
		f := newFixture(item)
		f.settings["m1"] = []*mangawatch.SubscriptionSetting{
			{UserID: "u1", ReadingStatus: mangawatch.ReadingStatusCompleted},
			{UserID: "u2", ReadingStatus: mangawatch.ReadingStatusPlanToRead},
		}
		f.scraped[item.URL] = &mangawatch.ScrapedItem{}

		res, err := f.scheduler().RunOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, res.Checked)
		assert.Equal(t, []string{item.URL}, f.scrapes)
	})

	t.Run("applies the release cadence window", func(t *testing.T) {
		t.Parallel()

		due := &mangawatch.TrackedItem{ID: "due", URL: "https://a.example/due"}
		recent := &mangawatch.TrackedItem{ID: "recent", URL: "https://a.example/recent"}
		fresh := &mangawatch.TrackedItem{ID: "fresh", URL: "https://a.example/fresh"}
		f := newFixture(due, recent, fresh)
		f.stored["due"] = []*mangawatch.Chapter{released(now.Add(-(6*24*time.Hour + 18*time.Hour)))}
		f.stored["recent"] = []*mangawatch.Chapter{released(now.Add(-3 * 24 * time.Hour))}
		f.scraped[due.URL] = &mangawatch.ScrapedItem{}
		f.scraped[fresh.URL] = &mangawatch.ScrapedItem{}

		res, err := f.scheduler().RunOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, res.Checked)
		assert.Equal(t, 1, res.Skipped)
		assert.ElementsMatch(t, []string{due.URL, fresh.URL}, f.scrapes)
	})

	t.Run("counts failures and keeps going", func(t *testing.T) {
		t.Parallel()

		broken := &mangawatch.TrackedItem{ID: "broken", URL: "https://a.example/broken"}
		ok := &mangawatch.TrackedItem{ID: "ok", URL: "https://a.example/ok"}
		skipped := &mangawatch.TrackedItem{ID: "skipped", URL: "https://a.example/skipped"}
		f := newFixture(broken, skipped, ok)
		f.settings["skipped"] = []*mangawatch.SubscriptionSetting{{UserID: "u", ReadingStatus: mangawatch.ReadingStatusOnHold}}
		f.scraped[ok.URL] = &mangawatch.ScrapedItem{Chapters: []mangawatch.ScrapedChapter{{Number: 1}}}

		res, err := f.scheduler().RunOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, res.Total)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, 1, res.Skipped)
		assert.Equal(t, 1, res.Updated)
		assert.Equal(t, 1, f.sleeps, "only the broken item is followed by another item")
		assert.NotContains(t, f.updates, "skipped")
	})

	t.Run("records the check time when the scrape fails", func(t *testing.T) {
		t.Parallel()

		broken := &mangawatch.TrackedItem{ID: "broken", Title: "Kept", URL: "https://a.example/broken"}
		f := newFixture(broken)

		res, err := f.scheduler().RunOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
		require.Contains(t, f.updates, "broken")
		upd := f.updates["broken"]
		require.NotNil(t, upd.LastCheckedAt)
		assert.Equal(t, now, *upd.LastCheckedAt)
		assert.Nil(t, upd.Title)
		assert.Nil(t, upd.CoverURL)
	})

	t.Run("does not notify when chapters cannot be stored", func(t *testing.T) {
		t.Parallel()

		item := &mangawatch.TrackedItem{ID: "m1", URL: "https://a.example/m1"}
		f := newFixture(item)
		f.scraped[item.URL] = &mangawatch.ScrapedItem{Chapters: []mangawatch.ScrapedChapter{{Number: 1}}}
		f.upsertErr = mangawatch.Errorf(mangawatch.EPERSIST, "disk full")

		res, err := f.scheduler().RunOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
		assert.Empty(t, f.notified)
		assert.Contains(t, f.updates, "m1")
	})

	t.Run("returns the empty summary when items cannot be listed", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("database closed")
		s := &schedule.Scheduler{
			Items: &mock.TrackedItemService{
				FindTrackedItemsFn: func(context.Context, mangawatch.TrackedItemFilter) ([]*mangawatch.TrackedItem, error) {
					return nil, cause
				},
			},
		}

		res, err := s.RunOnce(context.Background())

		require.ErrorIs(t, err, cause)
		require.NotNil(t, res)
		assert.Zero(t, res.Total)
	})

	t.Run("rejects overlapping runs", func(t *testing.T) {
		t.Parallel()

		item := &mangawatch.TrackedItem{ID: "m1", URL: "https://a.example/m1"}
		f := newFixture(item)
		s := f.scheduler()

		entered := make(chan struct{})
		release := make(chan struct{})
		s.Scraper = &mock.Scraper{
			ScrapeFn: func(context.Context, string) (*mangawatch.ScrapedItem, error) {
				close(entered)
				<-release
				return &mangawatch.ScrapedItem{}, nil
			},
		}

		done := make(chan error, 1)
		go func() {
			_, err := s.RunOnce(context.Background())
			done <- err
		}()
		<-entered

		res, err := s.RunOnce(context.Background())
		assert.Nil(t, res)
		assert.Equal(t, mangawatch.ECONFLICT, mangawatch.ErrorCode(err))

		close(release)
		require.NoError(t, <-done)

		_, err = s.RunOnce(context.Background())
		assert.NoError(t, err)
	})

	t.Run("reports outcomes to metrics", func(t *testing.T) {
		t.Parallel()

		item := &mangawatch.TrackedItem{ID: "m1", URL: "https://a.example/m1"}
		f := newFixture(item)
		f.scraped[item.URL] = &mangawatch.ScrapedItem{}
		s := f.scheduler()

		var outcomes []mangawatch.ItemOutcome
		var runs atomic.Int32
		s.Metrics = &mock.Metrics{
			ObserveItemFn: func(o mangawatch.ItemOutcome) { outcomes = append(outcomes, o) },
			ObserveRunFn:  func(time.Duration) { runs.Add(1) },
		}

		_, err := s.RunOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []mangawatch.ItemOutcome{mangawatch.ItemChecked}, outcomes)
		assert.Equal(t, int32(1), runs.Load())
	})
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := &schedule.Scheduler{
		Items: &mock.TrackedItemService{
			FindTrackedItemsFn: func(context.Context, mangawatch.TrackedItemFilter) ([]*mangawatch.TrackedItem, error) {
				runs.Add(1)
				return nil, nil
			},
		},
		Interval: 10 * time.Millisecond,
	}

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())

	s.Stop()
}
