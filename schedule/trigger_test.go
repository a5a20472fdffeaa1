package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/mangawatch"
	"github.com/fwojciec/mangawatch/mock"
	"github.com/fwojciec/mangawatch/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	t.Run("admits one run per cooldown", func(t *testing.T) {
		t.Parallel()

		l := schedule.NewRateLimiter(5 * time.Minute)

		assert.True(t, l.TryAcquire(now))
		assert.False(t, l.TryAcquire(now.Add(time.Minute)))
		assert.False(t, l.TryAcquire(now.Add(4*time.Minute)))
		assert.True(t, l.TryAcquire(now.Add(5*time.Minute+time.Second)))
	})

	t.Run("reports time until the next run", func(t *testing.T) {
		t.Parallel()

		l := schedule.NewRateLimiter(5 * time.Minute)
		require.True(t, l.TryAcquire(now))

		assert.InDelta(t, float64(3*time.Minute), float64(l.RetryAfter(now.Add(2*time.Minute))), float64(time.Second))
		assert.Zero(t, l.RetryAfter(now.Add(6*time.Minute)))
	})

	t.Run("gives a released token back", func(t *testing.T) {
		t.Parallel()

		l := schedule.NewRateLimiter(5 * time.Minute)
		release, ok := l.Acquire(now)
		require.True(t, ok)

		_, ok = l.Acquire(now)
		assert.False(t, ok)

		release(now)
		assert.True(t, l.TryAcquire(now))
	})

	t.Run("defaults the cooldown", func(t *testing.T) {
		t.Parallel()

		l := schedule.NewRateLimiter(0)
		require.True(t, l.TryAcquire(now))

		assert.False(t, l.TryAcquire(now.Add(schedule.DefaultCooldown-time.Second)))
	})
}

func TestTrigger_RunOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	runner := &mock.Runner{
		RunOnceFn: func(context.Context) (*mangawatch.RunResult, error) {
			calls++
			return &mangawatch.RunResult{Total: 1}, nil
		},
	}
	clock := now
	tr := schedule.NewTrigger(runner, 5*time.Minute)
	tr.Now = func() time.Time { return clock }

	res, err := tr.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	clock = clock.Add(time.Minute)
	_, err = tr.RunOnce(context.Background())
	assert.Equal(t, mangawatch.ERATELIMIT, mangawatch.ErrorCode(err))
	assert.Equal(t, 1, calls)

	clock = clock.Add(5 * time.Minute)
	_, err = tr.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestTrigger_RunOnce_Conflict(t *testing.T) {
	t.Parallel()

	calls := 0
	runner := &mock.Runner{
		RunOnceFn: func(context.Context) (*mangawatch.RunResult, error) {
			calls++
			if calls == 1 {
				return nil, mangawatch.Errorf(mangawatch.ECONFLICT, "update check already in progress")
			}
			return &mangawatch.RunResult{Total: 2}, nil
		},
	}
	tr := schedule.NewTrigger(runner, 5*time.Minute)
	tr.Now = func() time.Time { return now }

	_, err := tr.RunOnce(context.Background())
	assert.Equal(t, mangawatch.ECONFLICT, mangawatch.ErrorCode(err))

	res, err := tr.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	_, err = tr.RunOnce(context.Background())
	assert.Equal(t, mangawatch.ERATELIMIT, mangawatch.ErrorCode(err))
	assert.Equal(t, 2, calls)
}
