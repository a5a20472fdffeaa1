package mangawatch

import "context"

// PushPayload is the message delivered to a push subscriber.
type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
	URL   string `json:"url"`
}

// PushSender delivers a payload to one serialized push subscription.
type PushSender interface {
	// Send returns EDELIVERY when the provider rejects the message.
	Send(ctx context.Context, token string, payload PushPayload) error
}

// NotifyResult counts the outcome of one notification batch.
type NotifyResult struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Notifier announces new chapters of an item to its subscribers.
type Notifier interface {
	// Notify makes at most one delivery attempt per subscriber. Individual
	// delivery failures are counted, not returned.
	Notify(ctx context.Context, item *TrackedItem, chapters []ScrapedChapter) (*NotifyResult, error)
}
