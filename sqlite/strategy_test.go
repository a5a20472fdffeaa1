package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/mangawatch"
	"github.com/fwojciec/mangawatch/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyStore(t *testing.T) {
	t.Parallel()

	t.Run("returns unknown for unseen domain", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		got, err := sqlite.NewStrategyStore(db).GetStrategy(context.Background(), "sitea.example")

		require.NoError(t, err)
		assert.Equal(t, mangawatch.StrategyUnknown, got)
	})

	t.Run("stores last successful strategy", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
		fixedClock(db, now)
		store := sqlite.NewStrategyStore(db)
		ctx := context.Background()

		require.NoError(t, store.SetStrategy(ctx, "SiteA.example", mangawatch.StrategyDirectFetch))
		require.NoError(t, store.SetStrategy(ctx, "sitea.example", mangawatch.StrategyFirecrawl))

		got, err := store.GetStrategy(ctx, "sitea.example")
		require.NoError(t, err)
		assert.Equal(t, mangawatch.StrategyFirecrawl, got)

		all, err := store.FindDomainStrategies(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, now, all[0].LastSuccessAt)
	})

	t.Run("rejects unknown strategy", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		err := sqlite.NewStrategyStore(db).SetStrategy(context.Background(), "a.example", mangawatch.StrategyUnknown)
		assert.Equal(t, mangawatch.EINVALID, mangawatch.ErrorCode(err))
	})
}
