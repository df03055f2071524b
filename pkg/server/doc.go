// Package server provides the HTTP server for the introspection routes.
//
// The server ties together the route table, the client address resolver,
// the middleware chain, and the health and metrics endpoints, and manages
// start and graceful shutdown.
//
// # Endpoints
//
//   - Introspection routes: every path enabled in routes.enabled
//   - /healthz, /readyz, /version: see package health
//   - Metrics path (default /metrics) when telemetry.metrics.enabled is set
//
// # Basic Usage
//
//	cfg, err := config.LoadConfig("config.yaml")
//	if err != nil {
//	    return err
//	}
//
//	srv, err := server.NewServer(cfg,
//	    server.WithLogger(logger.Slog()),
//	    server.WithVersion(health.NewVersionInfo(version, commit, date)),
//	)
//	if err != nil {
//	    return err
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	return srv.Start(ctx)
//
// # Graceful Shutdown
//
// When the context passed to Start is cancelled, the server:
//  1. Marks readiness as draining so load balancers stop sending traffic
//  2. Stops accepting new connections
//  3. Waits for in-flight requests up to server.shutdown_timeout
//  4. Returns from Start
//
// # TLS
//
// With security.tls.enabled the server terminates TLS itself using
// cert_file and key_file. min_version selects TLS 1.2 (default) or 1.3.
// With a positive reload_interval the pair is re-read when either file
// changes, so a renewed certificate is served without a restart. A pair
// that is expired or not yet valid is refused and the previous one kept.
//
// # Tracing
//
// WithTracer adds a server span per request. Spans are named after the
// route for paths the server knows and after the method alone otherwise.
package server
