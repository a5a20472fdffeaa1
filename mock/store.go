package mock

import (
	"context"

	"github.com/fwojciec/mangawatch"
)

var (
	_ mangawatch.TrackedItemService    = (*TrackedItemService)(nil)
	_ mangawatch.ChapterService        = (*ChapterService)(nil)
	_ mangawatch.SubscriptionService   = (*SubscriptionService)(nil)
	_ mangawatch.PushSubscriberService = (*PushSubscriberService)(nil)
	_ mangawatch.StrategyStore         = (*StrategyStore)(nil)
)

// TrackedItemService is a mock implementation of mangawatch.TrackedItemService.
type TrackedItemService struct {
	UpsertTrackedItemFn   func(ctx context.Context, item *mangawatch.TrackedItem) error
	FindTrackedItemByIDFn func(ctx context.Context, id string) (*mangawatch.TrackedItem, error)
	FindTrackedItemsFn    func(ctx context.Context, filter mangawatch.TrackedItemFilter) ([]*mangawatch.TrackedItem, error)
	UpdateTrackedItemFn   func(ctx context.Context, id string, upd mangawatch.TrackedItemUpdate) (*mangawatch.TrackedItem, error)
}

func (s *TrackedItemService) UpsertTrackedItem(ctx context.Context, item *mangawatch.TrackedItem) error {
	return s.UpsertTrackedItemFn(ctx, item)
}

func (s *TrackedItemService) FindTrackedItemByID(ctx context.Context, id string) (*mangawatch.TrackedItem, error) {
	return s.FindTrackedItemByIDFn(ctx, id)
}

func (s *TrackedItemService) FindTrackedItems(ctx context.Context, filter mangawatch.TrackedItemFilter) ([]*mangawatch.TrackedItem, error) {
	return s.FindTrackedItemsFn(ctx, filter)
}

func (s *TrackedItemService) UpdateTrackedItem(ctx context.Context, id string, upd mangawatch.TrackedItemUpdate) (*mangawatch.TrackedItem, error) {
	return s.UpdateTrackedItemFn(ctx, id, upd)
}

// ChapterService is a mock implementation of mangawatch.ChapterService.
type ChapterService struct {
	UpsertChaptersFn func(ctx context.Context, chapters []*mangawatch.Chapter) error
	FindChaptersFn   func(ctx context.Context, filter mangawatch.ChapterFilter) ([]*mangawatch.Chapter, error)
}

func (s *ChapterService) UpsertChapters(ctx context.Context, chapters []*mangawatch.Chapter) error {
	return s.UpsertChaptersFn(ctx, chapters)
}

func (s *ChapterService) FindChapters(ctx context.Context, filter mangawatch.ChapterFilter) ([]*mangawatch.Chapter, error) {
	return s.FindChaptersFn(ctx, filter)
}

// SubscriptionService is a mock implementation of mangawatch.SubscriptionService.
type SubscriptionService struct {
	UpsertSubscriptionFn func(ctx context.Context, s *mangawatch.SubscriptionSetting) error
	FindSubscriptionsFn  func(ctx context.Context, filter mangawatch.SubscriptionFilter) ([]*mangawatch.SubscriptionSetting, error)
}

func (s *SubscriptionService) UpsertSubscription(ctx context.Context, sub *mangawatch.SubscriptionSetting) error {
	return s.UpsertSubscriptionFn(ctx, sub)
}

func (s *SubscriptionService) FindSubscriptions(ctx context.Context, filter mangawatch.SubscriptionFilter) ([]*mangawatch.SubscriptionSetting, error) {
	return s.FindSubscriptionsFn(ctx, filter)
}

// PushSubscriberService is a mock implementation of mangawatch.PushSubscriberService.
type PushSubscriberService struct {
	UpsertPushSubscriberFn func(ctx context.Context, s *mangawatch.PushSubscriber) error
	FindPushSubscriberFn   func(ctx context.Context, userID string) (*mangawatch.PushSubscriber, error)
}

func (s *PushSubscriberService) UpsertPushSubscriber(ctx context.Context, sub *mangawatch.PushSubscriber) error {
	return s.UpsertPushSubscriberFn(ctx, sub)
}

func (s *PushSubscriberService) FindPushSubscriber(ctx context.Context, userID string) (*mangawatch.PushSubscriber, error) {
	return s.FindPushSubscriberFn(ctx, userID)
}

// StrategyStore is a mock implementation of mangawatch.StrategyStore.
type StrategyStore struct {
	GetStrategyFn func(ctx context.Context, domain string) (mangawatch.Strategy, error)
	SetStrategyFn func(ctx context.Context, domain string, strategy mangawatch.Strategy) error
}

func (s *StrategyStore) GetStrategy(ctx context.Context, domain string) (mangawatch.Strategy, error) {
	return s.GetStrategyFn(ctx, domain)
}

func (s *StrategyStore) SetStrategy(ctx context.Context, domain string, strategy mangawatch.Strategy) error {
	return s.SetStrategyFn(ctx, domain, strategy)
}
