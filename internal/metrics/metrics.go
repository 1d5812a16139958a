// Package metrics provides Prometheus instrumentation for log replay.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecordsTotal counts interpreted log records by tag.
	RecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_records_total",
		Help: "Total number of log records interpreted",
	}, []string{"tag"})

	// LoadFailures counts rejected logs by error kind.
	LoadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_load_failures_total",
		Help: "Logs that could not be analyzed",
	}, []string{"kind"})

	LoadLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "replay_load_duration_seconds",
		Help:    "Time to decode and interpret one log",
		Buckets: prometheus.DefBuckets,
	})

	// LoadedGames tracks games held in the registry.
	LoadedGames = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "replay_loaded_games",
		Help: "Number of games held in memory",
	})

	// ChartsBuilt counts per-auction series reconstructions.
	ChartsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "replay_charts_built_total",
		Help: "Auction charts reconstructed",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "replay_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := routePattern(r)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern labels by chi route pattern so game ids do not explode
// cardinality. Unrouted requests share one label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
