package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ipecho/pkg/config"
)

const requestsTotalName = "requests_total"

// RequestMetrics tracks served introspection requests.
//
// Metrics:
//   - ipecho_requests_total: Total request count by route, format, status
//   - ipecho_request_duration_seconds: Time spent rendering, by route
//   - ipecho_header_count: Number of header pairs per request
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	headerCount     prometheus.Histogram
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      requestsTotalName,
				Help:      "Total number of introspection requests served",
			},
			[]string{"route", "format", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "Time spent rendering introspection responses in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"route"},
		),

		headerCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "header_count",
				Help:      "Number of header pairs carried by introspection requests",
				Buckets:   prometheus.LinearBuckets(0, 5, 8), // 0 to 35
			},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.headerCount,
	)

	return rm
}

// RecordRequest records metrics for a served request.
func (rm *RequestMetrics) RecordRequest(route, format, status string, duration time.Duration, headers int) {
	rm.requestsTotal.WithLabelValues(route, format, status).Inc()
	rm.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
	rm.headerCount.Observe(float64(headers))
}
