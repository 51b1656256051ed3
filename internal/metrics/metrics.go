// Package metrics owns the Prometheus collectors exported on GET /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catercost"

var (
	engineOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "engine_operations_total",
		Help:      "Costing engine calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	engineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "engine_operation_duration_seconds",
		Help:      "Costing engine latency, snapshot load included.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by cache and result (hit|miss|error).",
	}, []string{"cache", "result"})

	jobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_processed_total",
		Help:      "Background jobs by type and outcome (success|retry|dead_letter|invalid).",
	}, []string{"type", "outcome"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route template and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route template.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state: 0 closed, 1 open, 2 half-open.",
	}, []string{"name"})
)

// ObserveEngine records one engine call started at start.
func ObserveEngine(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	engineOps.WithLabelValues(operation, outcome).Inc()
	engineDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// CacheHit, CacheMiss and CacheError count lookups against a named cache.
func CacheHit(cache string)   { cacheLookups.WithLabelValues(cache, "hit").Inc() }
func CacheMiss(cache string)  { cacheLookups.WithLabelValues(cache, "miss").Inc() }
func CacheError(cache string) { cacheLookups.WithLabelValues(cache, "error").Inc() }

// JobOutcome counts a processed background job.
func JobOutcome(jobType, outcome string) {
	jobs.WithLabelValues(jobType, outcome).Inc()
}

// ObserveHTTP records one finished HTTP request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SetBreakerState publishes the numeric state of a circuit breaker.
func SetBreakerState(name string, state int) {
	breakerState.WithLabelValues(name).Set(float64(state))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler { return promhttp.Handler() }

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
