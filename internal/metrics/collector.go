// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector records bridge-level metrics.
type Collector struct {
	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	remoteRequests     *prometheus.CounterVec
	specOperations     prometheus.Gauge

	logger *zap.Logger
}

// NewCollector creates a metrics collector under the given namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.invocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_invocations_total",
			Help:      "Total number of tool invocations",
		},
		[]string{"tool", "status"},
	)

	c.invocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_invocation_duration_seconds",
			Help:      "Tool invocation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"tool"},
	)

	c.remoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Total number of HTTP requests dispatched to the remote API",
		},
		[]string{"method", "status"},
	)

	c.specOperations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "spec_operations",
			Help:      "Number of operations in the loaded OpenAPI document",
		},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordInvocation records one tool invocation.
func (c *Collector) RecordInvocation(tool, status string, duration time.Duration) {
	c.invocationsTotal.WithLabelValues(tool, status).Inc()
	c.invocationDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordRemoteRequest records one dispatched HTTP request.
func (c *Collector) RecordRemoteRequest(method string, status int) {
	c.remoteRequests.WithLabelValues(method, statusCode(status)).Inc()
}

// SetSpecOperations records the operation count of the loaded document.
func (c *Collector) SetSpecOperations(n int) {
	c.specOperations.Set(float64(n))
}

// statusCode collapses an HTTP status code into its class.
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
