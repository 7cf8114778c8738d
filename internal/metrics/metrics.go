// Package metrics exposes Prometheus collectors for the monitor service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pollsTotal                 *prometheus.CounterVec
	snapshotsTotal             prometheus.Counter
	eventsTotal                *prometheus.CounterVec
	dedupSuppressionsTotal     prometheus.Counter
	scrapeErrorsTotal          *prometheus.CounterVec
	activeMatches              prometheus.Gauge
	notifySendDurationSeconds  prometheus.Histogram
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pollsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crickwatch_polls_total",
				Help: "Total polling cycles, labeled by outcome.",
			},
			[]string{"status"},
		)

		snapshotsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crickwatch_snapshots_total",
				Help: "Total match snapshots classified.",
			},
		)

		eventsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crickwatch_events_total",
				Help: "Total events emitted, labeled by kind.",
			},
			[]string{"kind"},
		)

		dedupSuppressionsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crickwatch_dedup_suppressions_total",
				Help: "Total event candidates suppressed by the fired ledger.",
			},
		)

		scrapeErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crickwatch_scrape_errors_total",
				Help: "Total scrape failures, labeled by stage.",
			},
			[]string{"stage"},
		)

		activeMatches = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crickwatch_active_matches",
				Help: "Live matches currently tracked.",
			},
		)

		notifySendDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crickwatch_notify_send_duration_seconds",
				Help:    "Histogram of notification delivery latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePoll increments the poll counter for the given outcome.
func ObservePoll(status string) {
	pollsTotal.WithLabelValues(status).Inc()
}

// ObserveSnapshot counts one classified snapshot.
func ObserveSnapshot() {
	snapshotsTotal.Inc()
}

// ObserveEvent counts one emitted event.
func ObserveEvent(kind string) {
	eventsTotal.WithLabelValues(kind).Inc()
}

// ObserveDedupSuppression counts one event candidate the ledger silenced.
func ObserveDedupSuppression() {
	dedupSuppressionsTotal.Inc()
}

// ObserveScrapeError counts a scrape failure at the given stage.
func ObserveScrapeError(stage string) {
	scrapeErrorsTotal.WithLabelValues(stage).Inc()
}

// SetActiveMatches records how many matches the last poll saw live.
func SetActiveMatches(n int) {
	activeMatches.Set(float64(n))
}

// ObserveNotifySend records one delivery latency.
func ObserveNotifySend(duration time.Duration) {
	notifySendDurationSeconds.Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
