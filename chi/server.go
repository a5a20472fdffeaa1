// Package chi exposes the scheduler, scraper and validator over HTTP.
package chi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/mangawatch"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ShutdownTimeout bounds graceful shutdown of in-flight requests.
const ShutdownTimeout = 10 * time.Second

// MetricsHandler serves metrics and instruments requests.
type MetricsHandler interface {
	Handler() http.Handler
	Middleware(next http.Handler) http.Handler
}

// Server is the HTTP surface of the tracker.
type Server struct {
	router chi.Router

	// Runner runs a full update check for the cron endpoint.
	Runner mangawatch.Runner
	// Trigger runs a user-requested update check behind a cooldown.
	Trigger   mangawatch.Runner
	Scraper   mangawatch.Scraper
	Validator mangawatch.SourceValidator
	Tracker   mangawatch.Tracker
	Searcher  mangawatch.Searcher
	Metrics   MetricsHandler
	// Subscribers stores push subscriptions sent by browsers.
	Subscribers mangawatch.PushSubscriberService

	// CronSecret, when set, must be sent as a bearer token to /cron/run.
	CronSecret string
	Logger     *slog.Logger
}

// NewServer creates a Server with its routes registered. Services are read
// from the exported fields at request time.
func NewServer() *Server {
	s := &Server{}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Get("/metrics", s.metrics)
	r.Post("/cron/run", s.cronRun)

	r.Route("/api", func(r chi.Router) {
		r.Post("/updates/check", s.checkUpdates)
		r.Post("/scrape/analyze", s.analyze)
		r.Post("/admin/validate", s.validate)
		r.Post("/track", s.track)
		r.Get("/search", s.search)
		r.Post("/notifications/subscribe", s.subscribe)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger().Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		s.Metrics.Middleware(next).ServeHTTP(w, r)
	})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	if s.Metrics == nil {
		http.NotFound(w, r)
		return
	}
	s.Metrics.Handler().ServeHTTP(w, r)
}

func (s *Server) cronRun(w http.ResponseWriter, r *http.Request) {
	if s.CronSecret != "" {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.CronSecret)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
	}
	s.run(w, r, s.Runner)
}

func (s *Server) checkUpdates(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, s.Trigger)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, runner mangawatch.Runner) {
	if runner == nil {
		writeError(w, http.StatusNotImplemented, "update checks not configured")
		return
	}
	res, err := runner.RunOnce(r.Context())
	if err != nil && res == nil {
		s.Error(w, r, err)
		return
	}
	if err != nil {
		s.logger().Warn("update check ended early", "error", err)
	}
	writeJSON(w, http.StatusOK, res)
}

type urlRequest struct {
	URL    string `json:"url"`
	UserID string `json:"userId,omitempty"`
}

func (s *Server) decodeURL(w http.ResponseWriter, r *http.Request) (urlRequest, bool) {
	var req urlRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return req, false
	}
	if _, err := mangawatch.DomainOf(req.URL); err != nil || !strings.HasPrefix(req.URL, "http") {
		writeError(w, http.StatusBadRequest, "url must be an absolute http(s) URL")
		return req, false
	}
	return req, true
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeURL(w, r)
	if !ok {
		return
	}
	item, err := s.Scraper.Scrape(r.Context(), req.URL)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeURL(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Validator.Validate(r.Context(), req.URL))
}

func (s *Server) track(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeURL(w, r)
	if !ok {
		return
	}
	item, err := s.Tracker.Track(r.Context(), req.URL, req.UserID)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter q required")
		return
	}
	if s.Searcher == nil {
		writeError(w, http.StatusNotImplemented, "search not configured")
		return
	}
	results, err := s.Searcher.Search(r.Context(), q)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if results == nil {
		results = []mangawatch.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

type subscribeRequest struct {
	UserID       string          `json:"userId"`
	Subscription json.RawMessage `json:"subscription"`
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == "" || len(req.Subscription) == 0 || string(req.Subscription) == "null" {
		writeError(w, http.StatusBadRequest, "userId and subscription required")
		return
	}
	if s.Subscribers == nil {
		writeError(w, http.StatusNotImplemented, "notifications not configured")
		return
	}
	if err := s.Subscribers.UpsertPushSubscriber(r.Context(), &mangawatch.PushSubscriber{
		UserID:    req.UserID,
		PushToken: string(req.Subscription),
	}); err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
