// Package metrics метрики Prometheus: HTTP, фоновые джобы, circuit breaker внешних API
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacegrow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spacegrow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacegrow_job_runs_total",
			Help: "Background job runs by result",
		},
		[]string{"job", "result"}, // success, retry, failure
	)

	// 0 - closed, 1 - half-open, 2 - open
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "spacegrow_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	BreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacegrow_circuit_breaker_requests_total",
			Help: "Requests through circuit breaker by result",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)
)

// RecordHTTPRequest route - шаблон маршрута, а не сырой путь, чтобы не раздувать кардинальность
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordJobRun(job, result string) {
	JobRunsTotal.WithLabelValues(job, result).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
