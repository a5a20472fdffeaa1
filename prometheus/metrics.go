// Package prometheus records operational metrics with the Prometheus client.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/mangawatch"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ensure Metrics implements mangawatch.Metrics.
var _ mangawatch.Metrics = (*Metrics)(nil)

// Outcome label values.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	gatherer prometheus.Gatherer

	scrapes       *prometheus.CounterVec
	items         *prometheus.CounterVec
	runDuration   prometheus.Histogram
	notifications *prometheus.CounterVec
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		scrapes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mangawatch_scrapes_total",
				Help: "Total number of scrape attempts, labeled by strategy and outcome.",
			},
			[]string{"strategy", "outcome"},
		),
		items: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mangawatch_scheduler_items_total",
				Help: "Total number of items processed by the scheduler, labeled by outcome.",
			},
			[]string{"outcome"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mangawatch_scheduler_run_duration_seconds",
				Help:    "Histogram of scheduler run durations.",
				Buckets: []float64{1, 10, 30, 60, 300, 600, 1800, 3600},
			},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mangawatch_notifications_total",
				Help: "Total number of push deliveries, labeled by outcome.",
			},
			[]string{"outcome"},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mangawatch_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mangawatch_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 120},
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveScrape counts one scrape attempt with the given strategy.
func (m *Metrics) ObserveScrape(strategy mangawatch.Strategy, err error) {
	m.scrapes.WithLabelValues(string(strategy), outcome(err)).Inc()
}

// ObserveItem counts one scheduler item outcome.
func (m *Metrics) ObserveItem(o mangawatch.ItemOutcome) {
	m.items.WithLabelValues(string(o)).Inc()
}

// ObserveRun records the duration of a scheduler run.
func (m *Metrics) ObserveRun(d time.Duration) {
	m.runDuration.Observe(d.Seconds())
}

// ObserveDelivery counts one push delivery attempt.
func (m *Metrics) ObserveDelivery(err error) {
	m.notifications.WithLabelValues(outcome(err)).Inc()
}

// Handler serves the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware is a chi middleware that records HTTP request metrics.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.requests.WithLabelValues(r.Method, strconv.Itoa(ww.status)).Inc()
		m.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func outcome(err error) string {
	if err != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}
