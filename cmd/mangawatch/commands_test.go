package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/fwojciec/mangawatch"
	main "github.com/fwojciec/mangawatch/cmd/mangawatch"
	"github.com/fwojciec/mangawatch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeps() (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: stderr}, stdout, stderr
}

func TestCheckCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the run summary", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps()
		deps.Runner = &mock.Runner{
			RunOnceFn: func(context.Context) (*mangawatch.RunResult, error) {
				return &mangawatch.RunResult{
					Total:        2,
					Checked:      1,
					Updated:      1,
					Skipped:      1,
					UpdatedItems: []mangawatch.UpdatedItem{{ID: "m1", Title: "One", NewChapters: 3}},
				}, nil
			},
		}

		require.NoError(t, (&main.CheckCmd{}).Run(deps))

		var out map[string]any
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
		assert.EqualValues(t, 2, out["total"])
		assert.EqualValues(t, 1, out["updated"])
	})

	t.Run("reports a refused run", func(t *testing.T) {
		t.Parallel()

		deps, stdout, stderr := newDeps()
		deps.Runner = &mock.Runner{
			RunOnceFn: func(context.Context) (*mangawatch.RunResult, error) {
				return nil, mangawatch.Errorf(mangawatch.ECONFLICT, "update check already in progress")
			},
		}

		err := (&main.CheckCmd{}).Run(deps)

		assert.Equal(t, mangawatch.ECONFLICT, mangawatch.ErrorCode(err))
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "already in progress")
	})
}

func TestValidateCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints report lines", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps()
		deps.Validator = &mock.SourceValidator{
			ValidateFn: func(context.Context, string) *mangawatch.ValidationReport {
				return &mangawatch.ValidationReport{IsValid: true, Report: []string{"Scrape successful in 12ms", "SUCCESS: Found 3 chapters"}}
			},
		}

		require.NoError(t, (&main.ValidateCmd{URL: "https://a.example/m"}).Run(deps))

		assert.Contains(t, stdout.String(), "SUCCESS: Found 3 chapters")
		assert.Contains(t, stdout.String(), "Source is valid.")
	})

	t.Run("fails for an invalid source", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps()
		deps.Validator = &mock.SourceValidator{
			ValidateFn: func(context.Context, string) *mangawatch.ValidationReport {
				return &mangawatch.ValidationReport{Report: []string{"ERROR: No chapters found"}}
			},
		}

		err := (&main.ValidateCmd{URL: "https://a.example/m"}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stdout.String(), "ERROR: No chapters found")
	})
}

func TestScrapeCmd_Run(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := newDeps()
	deps.Scraper = &mock.Scraper{
		ScrapeFn: func(context.Context, string) (*mangawatch.ScrapedItem, error) {
			return &mangawatch.ScrapedItem{Title: "Solo", Chapters: []mangawatch.ScrapedChapter{{Number: 10.5, URL: "https://a.example/10.5"}}}, nil
		},
	}

	require.NoError(t, (&main.ScrapeCmd{URL: "https://a.example/m"}).Run(deps))

	assert.Contains(t, stdout.String(), `"title": "Solo"`)
	assert.Contains(t, stdout.String(), `"number": 10.5`)
}

func TestTrackCmd_Run(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := newDeps()
	deps.Tracker = &mock.Tracker{
		TrackFn: func(_ context.Context, url, user string) (*mangawatch.TrackedItem, error) {
			assert.Equal(t, "u1", user)
			return &mangawatch.TrackedItem{ID: "m1", Title: "Solo", URL: url}, nil
		},
	}

	require.NoError(t, (&main.TrackCmd{URL: "https://a.example/m", User: "u1"}).Run(deps))

	assert.Equal(t, "Tracking \"Solo\" (m1)\n", stdout.String())
}

func TestSearchCmd_Run(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := newDeps()
	deps.Searcher = &mock.Searcher{
		SearchFn: func(context.Context, string) ([]mangawatch.SearchResult, error) {
			return []mangawatch.SearchResult{{Title: "Solo Leveling", URL: "https://a.example/solo"}}, nil
		},
	}

	require.NoError(t, (&main.SearchCmd{Query: "solo"}).Run(deps))

	assert.Equal(t, "Solo Leveling\n  https://a.example/solo\n", stdout.String())
}
