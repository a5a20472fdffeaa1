package scrape

import (
	"context"

	"github.com/fwojciec/mangawatch"
)

var _ mangawatch.Tracker = (*Tracker)(nil)

// Tracker adds new items to the watch list.
type Tracker struct {
	Scraper       mangawatch.Scraper
	Items         mangawatch.TrackedItemService
	Chapters      mangawatch.ChapterService
	Subscriptions mangawatch.SubscriptionService
}

// Track scrapes url and stores the item, its chapters, and an optional
// subscription for userID.
func (t *Tracker) Track(ctx context.Context, url, userID string) (*mangawatch.TrackedItem, error) {
	scraped, err := t.Scraper.Scrape(ctx, url)
	if err != nil {
		return nil, err
	}

	domain, err := mangawatch.DomainOf(url)
	if err != nil {
		return nil, err
	}

	item := &mangawatch.TrackedItem{
		URL:      url,
		Title:    scraped.Title,
		CoverURL: scraped.CoverURL,
		Domain:   domain,
	}
	if err := t.Items.UpsertTrackedItem(ctx, item); err != nil {
		return nil, err
	}

	if len(scraped.Chapters) > 0 {
		chapters := make([]*mangawatch.Chapter, 0, len(scraped.Chapters))
		for _, c := range mangawatch.NewChapters(nil, scraped.Chapters) {
			chapters = append(chapters, c.Chapter(item.ID))
		}
		if err := t.Chapters.UpsertChapters(ctx, chapters); err != nil {
			return nil, err
		}
	}

	if userID != "" && t.Subscriptions != nil {
		if err := t.Subscriptions.UpsertSubscription(ctx, &mangawatch.SubscriptionSetting{
			UserID:               userID,
			TrackedItemID:        item.ID,
			NotificationsEnabled: true,
			ReadingStatus:        mangawatch.ReadingStatusReading,
		}); err != nil {
			return nil, err
		}
	}

	return item, nil
}
