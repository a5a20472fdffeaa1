// Package webpush delivers notifications through the Web Push protocol.
package webpush

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/fwojciec/mangawatch"
)

// DefaultTTL is how long the push service keeps an undelivered message.
const DefaultTTL = 24 * time.Hour

var _ mangawatch.PushSender = (*Sender)(nil)

// Sender signs messages with a VAPID key pair and posts them to the
// subscriber's push endpoint.
type Sender struct {
	publicKey  string
	privateKey string
	subject    string
	ttl        time.Duration
	client     webpush.HTTPClient
}

// Option configures a Sender.
type Option func(*Sender)

// WithTTL sets the message time to live.
func WithTTL(ttl time.Duration) Option {
	return func(s *Sender) {
		s.ttl = ttl
	}
}

// WithHTTPClient sets the client used to reach push endpoints.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Sender) {
		s.client = c
	}
}

// NewSender creates a Sender. subject is a contact URL or email address
// announced to push services.
func NewSender(publicKey, privateKey, subject string, opts ...Option) (*Sender, error) {
	if publicKey == "" || privateKey == "" {
		return nil, mangawatch.Errorf(mangawatch.ECONFIG, "VAPID key pair required")
	}
	s := &Sender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subject:    subject,
		ttl:        DefaultTTL,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Send delivers payload to the subscription serialized in token.
// Expired subscriptions (404, 410) and other rejections return EDELIVERY.
func (s *Sender) Send(ctx context.Context, token string, payload mangawatch.PushPayload) error {
	sub := &webpush.Subscription{}
	if err := json.Unmarshal([]byte(token), sub); err != nil {
		return mangawatch.WrapError(mangawatch.EDELIVERY, err, "invalid push subscription")
	}
	if sub.Endpoint == "" {
		return mangawatch.Errorf(mangawatch.EDELIVERY, "push subscription has no endpoint")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return mangawatch.WrapError(mangawatch.EINTERNAL, err, "encode push payload")
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, sub, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             int(s.ttl.Seconds()),
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		return mangawatch.WrapError(mangawatch.EDELIVERY, err, "push delivery")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return mangawatch.Errorf(mangawatch.EDELIVERY, "push subscription expired (status %d)", resp.StatusCode)
	case resp.StatusCode >= 400:
		return mangawatch.Errorf(mangawatch.EDELIVERY, "push service rejected message (status %d)", resp.StatusCode)
	}
	return nil
}
