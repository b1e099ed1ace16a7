// Package metrics exposes the Prometheus collectors of the API.
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
	// authOutcomes counts auth operations by operation and outcome.
	authOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "barbershop_auth_outcomes_total",
		Help: "Total number of auth operations by operation and outcome",
	}, []string{"operation", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "barbershop_http_request_duration_seconds",
		Help:    "Histogram of HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "barbershop_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"route"})
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// RecordAuth counts one auth operation, e.g. ("login", OutcomeRejected).
func RecordAuth(operation, outcome string) {
	authOutcomes.WithLabelValues(operation, outcome).Inc()
}

// ObserveRequest records the latency of one served request.
func ObserveRequest(method, route string, status int, d time.Duration) {
	requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// RecordRateLimited counts a request turned away with 429.
func RecordRateLimited(route string) {
	rateLimited.WithLabelValues(route).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
