package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lottery",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lottery",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	// Joins counts participant join resolutions by kind (new or returning).
	Joins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Subsystem: "game",
			Name:      "joins_total",
			Help:      "Total number of join resolutions.",
		},
		[]string{"kind"},
	)

	// Draws counts completed draws by outcome.
	Draws = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Subsystem: "game",
			Name:      "draws_total",
			Help:      "Total number of completed draws.",
		},
		[]string{"outcome"},
	)

	// RoundsDealt counts arrangements dealt into the round cache.
	RoundsDealt = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Subsystem: "game",
			Name:      "rounds_dealt_total",
			Help:      "Total number of rounds dealt.",
		},
	)

	// RoundsExpired counts rounds dropped past their ttl.
	RoundsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Subsystem: "game",
			Name:      "rounds_expired_total",
			Help:      "Total number of rounds expired unresolved.",
		},
	)

	// PIDReuses counts live slots overwritten under ring saturation.
	PIDReuses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Subsystem: "store",
			Name:      "pid_reuse_total",
			Help:      "Total number of PID slots reused while still live (degraded capacity).",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		Joins,
		Draws,
		RoundsDealt,
		RoundsExpired,
		PIDReuses,
	)
}

// Handler returns the HTTP handler exposing the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncrementInFlight increments the in-flight HTTP request gauge.
func IncrementInFlight() { httpInFlight.Inc() }

// DecrementInFlight decrements the in-flight HTTP request gauge.
func DecrementInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records one handled HTTP request.
func RecordHTTPRequest(method, path, status string, seconds float64) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(seconds)
}
