// Package metrics holds the Prometheus collectors of the service.
//
// Collectors are package variables so that any layer can record without
// having a registry injected. They exist from program start; InitMetrics
// registers them so /metrics exposes them. Recording into a collector that
// was never registered is harmless, which keeps tests free of setup.
//
// Naming follows Prometheus conventions: counters end in _total, durations
// are histograms in seconds, label values have low cardinality (route
// templates, never raw paths or ids).
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookshelf"

// Result label values.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultNotFound = "not_found"
	ResultRejected = "rejected"
)

// Cache result label values.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// HTTP

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "HTTP requests currently being served.",
		},
	)

	// catalog

	BookOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "book_operations_total",
			Help:      "Catalog operations by name and result (success, not_found, failure).",
		},
		[]string{"operation", "result"},
	)

	BookOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "book_operation_duration_seconds",
			Help:      "Catalog operation latency including store round trips.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	// cache

	CacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Book cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)

	// circuit breakers

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Breaker state: 0=CLOSED, 1=OPEN, 2=HALF_OPEN.",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "Calls through a breaker by result (success, failure, rejected).",
		},
		[]string{"name", "result"},
	)

	// messaging

	MessagesPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "Domain events published by routing key and result.",
		},
		[]string{"exchange", "routing_key", "result"},
	)
)

var registerOnce sync.Once

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsInProgress,
		BookOperationsTotal,
		BookOperationDuration,
		CacheRequestsTotal,
		CircuitBreakerState,
		CircuitBreakerRequests,
		MessagesPublishedTotal,
	}
}

// InitMetrics registers every collector with the default registry. Safe to
// call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(collectors()...)
	})
}

// Handler serves the default registry in the text exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Register adds every collector to reg. Used by tests that want an
// isolated registry.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveBookOperation records one catalog operation. notFound marks a
// soft miss (the operation ran but the book does not exist).
func ObserveBookOperation(operation string, start time.Time, err error, notFound bool) {
	result := ResultSuccess
	switch {
	case err != nil:
		result = ResultFailure
	case notFound:
		result = ResultNotFound
	}
	BookOperationsTotal.WithLabelValues(operation, result).Inc()
	BookOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func ObserveCache(result string) {
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

func ObserveBreaker(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// SetBreakerState takes the numeric value of circuitbreaker.State.
func SetBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func ObservePublish(exchange, routingKey string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey, result).Inc()
}
