package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/mangawatch"
	"github.com/fwojciec/mangawatch/mock"
	mwslog "github.com/fwojciec/mangawatch/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with bytes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "<html>content</html>", nil
			},
		}

		fetcher := mwslog.NewLoggingFetcher(inner, debugLogger(&buf))
		html, err := fetcher.Fetch(context.Background(), "https://example.com/manga")

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", html)
		output := buf.String()
		assert.Contains(t, output, "direct fetch")
		assert.Contains(t, output, "url=https://example.com/manga")
		assert.Contains(t, output, "bytes=20")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "", errors.New("network error")
			},
		}

		fetcher := mwslog.NewLoggingFetcher(inner, debugLogger(&buf))
		_, err := fetcher.Fetch(context.Background(), "https://example.com/manga")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"network error\"")
	})
}

func TestLoggingProviderFetcher_Fetch(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.ProviderFetcher{
		FetchFn: func(context.Context, string, mangawatch.ScrapeOptions) (string, error) {
			return "# Title", nil
		},
	}

	fetcher := mwslog.NewLoggingProviderFetcher(inner, debugLogger(&buf))
	opts := mangawatch.DefaultDomainRules().Resolve("manhwaweb.com")
	md, err := fetcher.Fetch(context.Background(), "https://manhwaweb.com/manga/x", opts)

	require.NoError(t, err)
	assert.Equal(t, "# Title", md)
	output := buf.String()
	assert.Contains(t, output, "provider fetch")
	assert.Contains(t, output, "only_main_content=false")
	assert.Contains(t, output, "actions=2")
	assert.Contains(t, output, "bytes=7")
}

func TestLoggingLinkChecker_CheckLink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.LinkChecker{
		CheckLinkFn: func(context.Context, string) error { return errors.New("status 404") },
	}

	err := mwslog.NewLoggingLinkChecker(inner, debugLogger(&buf)).CheckLink(context.Background(), "https://x/c.jpg")

	require.Error(t, err)
	assert.Contains(t, buf.String(), "link check")
	assert.Contains(t, buf.String(), "err=\"status 404\"")
}
