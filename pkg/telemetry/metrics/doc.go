// Package metrics provides Prometheus metrics for ipecho.
//
// # Metrics
//
//   - ipecho_requests_total{route,format,status}
//   - ipecho_request_duration_seconds{route}
//   - ipecho_header_count
//   - ipecho_client_kind_total{kind}
//
// plus the standard Go runtime and process collectors.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	dispatcher := routes.NewDispatcher(table, logger, collector)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics
