// Package notify announces new chapters to subscribed users.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/fwojciec/mangawatch"
)

// DefaultIcon is the icon shown with every notification.
const DefaultIcon = "/icon-192x192.png"

var _ mangawatch.Notifier = (*Dispatcher)(nil)

// Dispatcher sends one push message per subscriber with notifications
// enabled. Deliveries are best effort and never retried.
type Dispatcher struct {
	Subscriptions mangawatch.SubscriptionService
	Subscribers   mangawatch.PushSubscriberService
	Sender        mangawatch.PushSender
	Metrics       mangawatch.Metrics
	Logger        *slog.Logger
}

// Notify delivers a message about the newest of chapters to each
// subscriber of item.
func (d *Dispatcher) Notify(ctx context.Context, item *mangawatch.TrackedItem, chapters []mangawatch.ScrapedChapter) (*mangawatch.NotifyResult, error) {
	res := &mangawatch.NotifyResult{}

	newest, ok := mangawatch.Newest(chapters)
	if !ok {
		return res, nil
	}

	enabled := true
	subs, err := d.Subscriptions.FindSubscriptions(ctx, mangawatch.SubscriptionFilter{
		TrackedItemID:        &item.ID,
		NotificationsEnabled: &enabled,
	})
	if err != nil {
		return res, err
	}

	payload := Payload(item, newest)
	logger := d.logger().With("item", item.ID)

	for _, sub := range subs {
		subscriber, err := d.Subscribers.FindPushSubscriber(ctx, sub.UserID)
		if mangawatch.ErrorCode(err) == mangawatch.ENOTFOUND || (err == nil && subscriber.PushToken == "") {
			res.Skipped++
			continue
		} else if err != nil {
			logger.Warn("failed to load push subscriber", "user", sub.UserID, "error", err)
			res.Failed++
			continue
		}

		err = d.Sender.Send(ctx, subscriber.PushToken, payload)
		if d.Metrics != nil {
			d.Metrics.ObserveDelivery(err)
		}
		if err != nil {
			logger.Warn("push delivery failed", "user", sub.UserID, "error", err)
			res.Failed++
			continue
		}
		res.Sent++
	}

	logger.Info("notifications sent", "sent", res.Sent, "failed", res.Failed, "skipped", res.Skipped)
	return res, nil
}

// Payload builds the push message announcing chapter of item.
func Payload(item *mangawatch.TrackedItem, chapter mangawatch.ScrapedChapter) mangawatch.PushPayload {
	return mangawatch.PushPayload{
		Title: "New Chapter: " + item.Title,
		Body:  fmt.Sprintf("Chapter %s is now available!", strconv.FormatFloat(chapter.Number, 'f', -1, 64)),
		Icon:  DefaultIcon,
		URL:   "/manga/" + item.ID,
	}
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d.Logger
}
