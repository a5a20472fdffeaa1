package chi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/mangawatch"
	mwchi "github.com/fwojciec/mangawatch/chi"
	"github.com/fwojciec/mangawatch/mock"
	mwprom "github.com/fwojciec/mangawatch/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *mwchi.Server, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var v map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func runner(res *mangawatch.RunResult, err error) *mock.Runner {
	return &mock.Runner{
		RunOnceFn: func(context.Context) (*mangawatch.RunResult, error) { return res, err },
	}
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	rec := do(t, mwchi.NewServer(), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_CronRun(t *testing.T) {
	t.Parallel()

	newServer := func() *mwchi.Server {
		s := mwchi.NewServer()
		s.CronSecret = "s3cret"
		s.Runner = runner(&mangawatch.RunResult{Total: 2, Checked: 2}, nil)
		return s
	}

	t.Run("requires the bearer secret", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServer(), http.MethodPost, "/cron/run", "", "Authorization", "Bearer wrong")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("returns the run summary", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServer(), http.MethodPost, "/cron/run", "", "Authorization", "Bearer s3cret")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.EqualValues(t, 2, body["total"])
		assert.Equal(t, []any{}, body["updatedMangas"])
		assert.Contains(t, body, "durationMs")
	})
}

func TestServer_CheckUpdates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"rate limited", mangawatch.Errorf(mangawatch.ERATELIMIT, "retry in 4m0s"), http.StatusTooManyRequests},
		{"already running", mangawatch.Errorf(mangawatch.ECONFLICT, "update check already in progress"), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := mwchi.NewServer()
			s.Trigger = runner(nil, tt.err)

			rec := do(t, s, http.MethodPost, "/api/updates/check", "")

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, mangawatch.ErrorMessage(tt.err), decode(t, rec)["error"])
		})
	}
}

func TestServer_Analyze(t *testing.T) {
	t.Parallel()

	t.Run("returns the scraped item", func(t *testing.T) {
		t.Parallel()

		s := mwchi.NewServer()
		s.Scraper = &mock.Scraper{
			ScrapeFn: func(_ context.Context, url string) (*mangawatch.ScrapedItem, error) {
				assert.Equal(t, "https://a.example/m", url)
				return &mangawatch.ScrapedItem{Title: "T", Strategy: mangawatch.StrategyDirectFetch}, nil
			},
		}

		rec := do(t, s, http.MethodPost, "/api/scrape/analyze", `{"url":"https://a.example/m"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "T", body["title"])
		assert.Equal(t, "DIRECT_FETCH", body["strategy"])
	})

	t.Run("maps scrape failures to bad gateway", func(t *testing.T) {
		t.Parallel()

		s := mwchi.NewServer()
		s.Scraper = &mock.Scraper{
			ScrapeFn: func(context.Context, string) (*mangawatch.ScrapedItem, error) {
				return nil, mangawatch.Errorf(mangawatch.ESCRAPE, "scraping failed")
			},
		}

		rec := do(t, s, http.MethodPost, "/api/scrape/analyze", `{"url":"https://a.example/m"}`)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "scraping failed", decode(t, rec)["error"])
	})

	t.Run("rejects relative URLs", func(t *testing.T) {
		t.Parallel()

		rec := do(t, mwchi.NewServer(), http.MethodPost, "/api/scrape/analyze", `{"url":"/manga/x"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_Validate(t *testing.T) {
	t.Parallel()

	s := mwchi.NewServer()
	s.Validator = &mock.SourceValidator{
		ValidateFn: func(context.Context, string) *mangawatch.ValidationReport {
			return &mangawatch.ValidationReport{IsValid: false, Report: []string{"ERROR: No chapters found"}}
		},
	}

	rec := do(t, s, http.MethodPost, "/api/admin/validate", `{"url":"https://a.example/m"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isValid":false,"report":["ERROR: No chapters found"],"data":null}`, rec.Body.String())
}

func TestServer_Track(t *testing.T) {
	t.Parallel()

	s := mwchi.NewServer()
	s.Tracker = &mock.Tracker{
		TrackFn: func(_ context.Context, url, userID string) (*mangawatch.TrackedItem, error) {
			assert.Equal(t, "u1", userID)
			return &mangawatch.TrackedItem{ID: "m1", URL: url}, nil
		},
	}

	rec := do(t, s, http.MethodPost, "/api/track", `{"url":"https://a.example/m","userId":"u1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "m1", decode(t, rec)["id"])
}

func TestServer_Search(t *testing.T) {
	t.Parallel()

	s := mwchi.NewServer()
	s.Searcher = &mock.Searcher{
		SearchFn: func(_ context.Context, q string) ([]mangawatch.SearchResult, error) {
			assert.Equal(t, "solo leveling", q)
			return []mangawatch.SearchResult{{Title: "Solo Leveling", URL: "https://a.example/solo"}}, nil
		},
	}

	rec := do(t, s, http.MethodGet, "/api/search?q=solo+leveling", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"url":"https://a.example/solo"`)

	rec = do(t, s, http.MethodGet, "/api/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	s := mwchi.NewServer()
	s.Metrics = mwprom.NewMetrics(prometheus.NewRegistry())

	do(t, s, http.MethodGet, "/healthz", "")
	rec := do(t, s, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/healthz"`)
}

func TestErrorStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusNotFound, mwchi.ErrorStatusCode(mangawatch.ENOTFOUND))
	assert.Equal(t, http.StatusInternalServerError, mwchi.ErrorStatusCode(mangawatch.EINTERNAL))
	assert.Equal(t, http.StatusInternalServerError, mwchi.ErrorStatusCode("unknown"))
}

func TestServer_Subscribe(t *testing.T) {
	t.Parallel()

	var got *mangawatch.PushSubscriber
	s := mwchi.NewServer()
	s.Subscribers = &mock.PushSubscriberService{
		UpsertPushSubscriberFn: func(_ context.Context, sub *mangawatch.PushSubscriber) error {
			got = sub
			return nil
		},
	}

	rec := do(t, s, http.MethodPost, "/api/notifications/subscribe",
		`{"userId":"u1","subscription":{"endpoint":"https://push.example/abc","keys":{"auth":"a","p256dh":"b"}}}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
	assert.JSONEq(t, `{"endpoint":"https://push.example/abc","keys":{"auth":"a","p256dh":"b"}}`, got.PushToken)

	rec = do(t, s, http.MethodPost, "/api/notifications/subscribe", `{"userId":"u1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
