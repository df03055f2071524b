// Package telemetry groups the observability packages of ipecho.
//
// # Components
//
//   - logging: Structured logging on log/slog with a runtime-adjustable level
//   - metrics: Prometheus metrics for every dispatched request
//   - health: Liveness, readiness and version endpoints
//   - summary: Periodic traffic summary written to the log
//   - tracing: OpenTelemetry span per request, exported over OTLP gRPC
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	dispatcher := routes.NewDispatcher(table, logger.Slog(), collector)
//
//	scheduler := summary.NewScheduler(collector, "@hourly", logger.Slog())
//	if err := scheduler.Start(ctx); err != nil {
//	    return err
//	}
//	defer scheduler.Stop()
//
// Nothing observed here leaves the process except through the metrics
// endpoint, the log and, when tracing is enabled, the OTLP exporter.
package telemetry
