package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ipecho/pkg/config"
)

// Client kinds, as labelled on ipecho_client_kind_total.
const (
	KindTool    = "tool"
	KindBrowser = "browser"
)

// ClientMetrics counts callers by how the landing page would classify them.
type ClientMetrics struct {
	kindTotal *prometheus.CounterVec
}

// NewClientMetrics creates and registers client metrics with the provided registry.
func NewClientMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ClientMetrics {
	cm := &ClientMetrics{
		kindTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "client_kind_total",
				Help:      "Requests by client kind (tool or browser)",
			},
			[]string{"kind"},
		),
	}

	// Pre-create both series so they report zero before the first request.
	cm.kindTotal.WithLabelValues(KindTool)
	cm.kindTotal.WithLabelValues(KindBrowser)

	registry.MustRegister(cm.kindTotal)
	return cm
}

// RecordClient counts one request from a tool-like or browser-like client.
func (cm *ClientMetrics) RecordClient(toolLike bool) {
	kind := KindBrowser
	if toolLike {
		kind = KindTool
	}
	cm.kindTotal.WithLabelValues(kind).Inc()
}
