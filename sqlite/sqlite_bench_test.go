package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fwojciec/mangawatch"
	"github.com/fwojciec/mangawatch/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkUpsertChapters measures re-upserting a full chapter list, the
// common case of a scheduler run that finds no new chapters.
func BenchmarkUpsertChapters(b *testing.B) {
	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	ctx := context.Background()
	item := &mangawatch.TrackedItem{URL: "https://bench.example/manga/1"}
	require.NoError(b, sqlite.NewTrackedItemService(db).UpsertTrackedItem(ctx, item))

	chapters := make([]*mangawatch.Chapter, 200)
	for i := range chapters {
		chapters[i] = &mangawatch.Chapter{
			TrackedItemID: item.ID,
			Number:        float64(i + 1),
			Title:         fmt.Sprintf("Chapter %d", i+1),
			URL:           fmt.Sprintf("https://bench.example/manga/1/%d", i+1),
		}
	}
	svc := sqlite.NewChapterService(db)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := svc.UpsertChapters(ctx, chapters); err != nil {
			b.Fatal(err)
		}
	}
}
