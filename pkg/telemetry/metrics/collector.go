package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mercator-hq/ipecho/pkg/config"
	"mercator-hq/ipecho/pkg/routes"
)

// Collector owns the service's Prometheus registry and records one sample
// set per dispatched request. It implements routes.Observer.
//
// Label values come from the route table, so cardinality is bounded by the
// number of exposed routes; unknown paths never reach the dispatcher's
// observer.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics *RequestMetrics
	clientMetrics  *ClientMetrics
}

// NewCollector creates a collector. If registry is nil a fresh registry is
// created with the Go runtime and process collectors attached.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	dispatcher := routes.NewDispatcher(table, logger, collector)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNS
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = config.DefaultRequestDurationBuckets
	}

	return &Collector{
		config:         cfg,
		registry:       registry,
		requestMetrics: NewRequestMetrics(cfg, registry),
		clientMetrics:  NewClientMetrics(cfg, registry),
	}
}

// Observe records a dispatched request.
func (c *Collector) Observe(o routes.Observation) {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RecordRequest(o.Path, o.Format.String(), strconv.Itoa(o.Status), o.Duration, o.Headers)
	c.clientMetrics.RecordClient(o.ToolLike)
}

// Registry returns the registry metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// TotalRequests returns the number of requests recorded so far, summed over
// every route, format and status.
func (c *Collector) TotalRequests() (float64, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return 0, fmt.Errorf("failed to gather metrics: %w", err)
	}

	name := prometheus.BuildFQName(c.config.Namespace, "", requestsTotalName)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total, nil
}
