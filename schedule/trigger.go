package schedule

import (
	"context"
	"time"

	"github.com/fwojciec/mangawatch"
)

var _ mangawatch.Runner = (*Trigger)(nil)

// Trigger runs the scheduler on demand, at most once per cooldown.
type Trigger struct {
	Runner  mangawatch.Runner
	Limiter *RateLimiter
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewTrigger creates a Trigger guarding runner with the given cooldown.
func NewTrigger(runner mangawatch.Runner, cooldown time.Duration) *Trigger {
	return &Trigger{Runner: runner, Limiter: NewRateLimiter(cooldown)}
}

// RunOnce starts a run unless one was started within the cooldown, in
// which case it returns ERATELIMIT. A run refused with ECONFLICT does not
// start a cooldown.
func (t *Trigger) RunOnce(ctx context.Context) (*mangawatch.RunResult, error) {
	now := time.Now()
	if t.Now != nil {
		now = t.Now()
	}
	release, ok := t.Limiter.Acquire(now)
	if !ok {
		return nil, mangawatch.Errorf(mangawatch.ERATELIMIT, "manual update check rate limited, retry in %s",
			t.Limiter.RetryAfter(now).Round(time.Second))
	}
	res, err := t.Runner.RunOnce(ctx)
	if mangawatch.ErrorCode(err) == mangawatch.ECONFLICT {
		release(now)
	}
	return res, err
}
