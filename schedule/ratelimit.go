package schedule

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultCooldown is the minimum time between two manual runs.
const DefaultCooldown = 5 * time.Minute

// RateLimiter admits at most one manual run per cooldown window.
// It is a token bucket with a burst of 1 refilled once per cooldown.
type RateLimiter struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	cooldown time.Duration
}

// NewRateLimiter creates a RateLimiter with the given cooldown.
// A non-positive cooldown uses DefaultCooldown.
func NewRateLimiter(cooldown time.Duration) *RateLimiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &RateLimiter{
		limiter:  rate.NewLimiter(rate.Every(cooldown), 1),
		cooldown: cooldown,
	}
}

// TryAcquire reports whether a run may start at now, consuming the token
// if so. It never blocks.
func (l *RateLimiter) TryAcquire(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limiter.AllowN(now, 1)
}

// Acquire is TryAcquire for callers that may not use the run after all.
// When ok is true, calling release with the same now gives the token back.
func (l *RateLimiter) Acquire(now time.Time) (release func(now time.Time), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.limiter.ReserveN(now, 1)
	if !r.OK() {
		return nil, false
	}
	if r.DelayFrom(now) > 0 {
		r.CancelAt(now)
		return nil, false
	}
	return func(at time.Time) {
		l.mu.Lock()
		defer l.mu.Unlock()
		r.CancelAt(at)
	}, true
}

// RetryAfter returns how long after now the next run would be admitted.
func (l *RateLimiter) RetryAfter(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	tokens := l.limiter.TokensAt(now)
	if tokens >= 1 {
		return 0
	}
	return time.Duration((1 - tokens) * float64(l.cooldown))
}
