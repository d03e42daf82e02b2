// Package metrics provides Prometheus metrics for NatureCast services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GBIFMetrics contains Prometheus metrics for the upstream occurrence client
// and its circuit breaker.
type GBIFMetrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec

	breakerOpensTotal  *prometheus.CounterVec
	breakerStateGauge  prometheus.Gauge
	shortCircuitsTotal prometheus.Counter
}

// NewGBIFMetrics creates and registers new upstream client metrics
func NewGBIFMetrics(registry *prometheus.Registry) (*GBIFMetrics, error) {
	m := &GBIFMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *GBIFMetrics) initMetrics() {
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gbif_requests_total",
			Help: "Total number of requests issued to the occurrence API",
		},
		[]string{"status"}, // status: success, error
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gbif_request_duration_seconds",
			Help:    "Time taken by occurrence API requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"status"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gbif_errors_total",
			Help: "Total number of occurrence API failures by type",
		},
		[]string{"error_type"}, // rate_limit, server_error, malformed_response, network
	)

	m.breakerOpensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gbif_breaker_opens_total",
			Help: "Total number of circuit breaker open transitions",
		},
		[]string{"reason"},
	)

	m.breakerStateGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gbif_breaker_open",
			Help: "Whether the circuit breaker is currently open (1) or closed (0)",
		},
	)

	m.shortCircuitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gbif_breaker_short_circuits_total",
			Help: "Total number of calls rejected without I/O while the breaker was open",
		},
	)
}

// Describe implements the Collector interface
func (m *GBIFMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requestsTotal.Describe(ch)
	m.requestDuration.Describe(ch)
	m.errorsTotal.Describe(ch)
	m.breakerOpensTotal.Describe(ch)
	m.breakerStateGauge.Describe(ch)
	m.shortCircuitsTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *GBIFMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requestsTotal.Collect(ch)
	m.requestDuration.Collect(ch)
	m.errorsTotal.Collect(ch)
	m.breakerOpensTotal.Collect(ch)
	m.breakerStateGauge.Collect(ch)
	m.shortCircuitsTotal.Collect(ch)
}

// RecordRequest records one completed occurrence API request
func (m *GBIFMetrics) RecordRequest(status string, duration float64) {
	m.requestsTotal.WithLabelValues(status).Inc()
	m.requestDuration.WithLabelValues(status).Observe(duration)
}

// RecordError records an occurrence API failure
func (m *GBIFMetrics) RecordError(errorType string) {
	m.errorsTotal.WithLabelValues(errorType).Inc()
}

// RecordBreakerOpen records a breaker open transition
func (m *GBIFMetrics) RecordBreakerOpen(reason string) {
	m.breakerOpensTotal.WithLabelValues(reason).Inc()
	m.breakerStateGauge.Set(1)
}

// RecordBreakerClose marks the breaker as closed
func (m *GBIFMetrics) RecordBreakerClose() {
	m.breakerStateGauge.Set(0)
}

// RecordShortCircuit records a call rejected while the breaker was open
func (m *GBIFMetrics) RecordShortCircuit() {
	m.shortCircuitsTotal.Inc()
}
