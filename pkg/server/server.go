package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"slices"
	"sync"

	"mercator-hq/ipecho/pkg/config"
	"mercator-hq/ipecho/pkg/connection"
	"mercator-hq/ipecho/pkg/routes"
	"mercator-hq/ipecho/pkg/server/middleware"
	"mercator-hq/ipecho/pkg/telemetry/health"
	"mercator-hq/ipecho/pkg/telemetry/metrics"
	"mercator-hq/ipecho/pkg/telemetry/tracing"
)

// Server serves the introspection routes alongside the health and metrics
// endpoints.
type Server struct {
	config    *config.Config
	logger    *slog.Logger
	table     *routes.Table
	resolver  *connection.Resolver
	collector *metrics.Collector
	checker   *health.Checker
	tracer    *tracing.Tracer
	version   health.VersionInfo

	httpServer   *http.Server
	listener     net.Listener
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by the server and its middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithCollector sets the metrics collector. When metrics are enabled and no
// collector is given, the server creates one on a fresh registry.
func WithCollector(collector *metrics.Collector) Option {
	return func(s *Server) { s.collector = collector }
}

// WithChecker sets the health checker.
func WithChecker(checker *health.Checker) Option {
	return func(s *Server) { s.checker = checker }
}

// WithTracer sets the request tracer. Without one, requests are not traced.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(s *Server) { s.tracer = tracer }
}

// WithVersion sets the build information served at /version.
func WithVersion(info health.VersionInfo) Option {
	return func(s *Server) { s.version = info }
}

// NewServer builds the route table and client address resolver from cfg.
// cfg is expected to have passed config.Validate.
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{config: cfg}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.checker == nil {
		s.checker = health.New(0)
	}
	if s.collector == nil && cfg.Telemetry.Metrics.Enabled {
		s.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	table, err := routes.NewTable(cfg.Routes.Enabled)
	if err != nil {
		return nil, fmt.Errorf("failed to build route table: %w", err)
	}
	s.table = table

	resolver, err := connection.NewResolver(cfg.Proxy.TrustForwardedHeaders, cfg.Proxy.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("failed to build address resolver: %w", err)
	}
	s.resolver = resolver

	s.checker.RegisterCheck("routes", func(context.Context) error {
		if len(s.table.Paths()) == 0 {
			return errors.New("no routes exposed")
		}
		return nil
	})
	s.checker.RegisterCheck("listener", func(context.Context) error {
		if !s.IsRunning() {
			return errors.New("server is not running")
		}
		return nil
	})

	return s, nil
}

// Start listens on the configured address and serves until ctx is
// cancelled, at which point the server shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	tlsCfg := s.config.Security.TLS
	httpServer := &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	if tlsCfg.Enabled {
		tlsConfig, err := configureTLS(tlsCfg)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to configure TLS: %w", err)
		}

		reloader := NewCertificateReloader(tlsCfg.CertFile, tlsCfg.KeyFile, tlsCfg.ReloadInterval, s.logger)
		if err := reloader.Start(ctx); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		tlsConfig.GetCertificate = reloader.GetCertificateFunc()
		httpServer.TLSConfig = tlsConfig
	}

	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}

	s.httpServer = httpServer
	s.listener = ln
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"address", ln.Addr().String(),
			"tls_enabled", tlsCfg.Enabled,
			"routes", len(s.table.Paths()),
			"health_checks", s.checker.ListChecks(),
		)

		var err error
		if tlsCfg.Enabled {
			err = httpServer.ServeTLS(ln, "", "")
		} else {
			err = httpServer.Serve(ln)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown marks the service as draining and waits up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		httpServer := s.httpServer
		s.mu.RUnlock()
		if !running {
			return
		}

		s.checker.SetDraining()
		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx := ctx
		if s.config.Server.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
			defer cancel()
		}

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// Handler returns the routes and endpoints wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var observer routes.Observer
	if s.collector != nil {
		observer = s.collector
	}

	mux := http.NewServeMux()
	mux.Handle("/", routes.NewDispatcher(s.table, s.logger, observer))
	health.Register(mux, s.checker, s.version)
	if s.config.Telemetry.Metrics.Enabled && s.collector != nil {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.collector.Handler())
	}

	mws := []middleware.Middleware{
		middleware.RecoveryMiddleware(s.logger),
		middleware.RequestIDMiddleware,
	}
	if s.tracer != nil {
		mws = append(mws, s.tracer.Middleware(s.routeName))
	}
	mws = append(mws,
		middleware.LoggingMiddleware(s.logger),
		connection.Middleware(s.resolver),
		middleware.CORSMiddleware(s.config.Server.CORS),
	)
	return middleware.Chain(mux, mws...)
}

// routeName names the exposed route or endpoint r targets, or "" for any
// other path.
func (s *Server) routeName(r *http.Request) string {
	path := r.URL.Path
	if _, ok := s.table.Lookup(path); ok {
		return path
	}
	if slices.Contains(health.Paths(), path) {
		return path
	}
	if s.collector != nil && path == s.config.Telemetry.Metrics.Path {
		return path
	}
	return ""
}

// Table returns the route table the server exposes.
func (s *Server) Table() *routes.Table {
	return s.table
}

// Collector returns the metrics collector, or nil when metrics are disabled.
func (s *Server) Collector() *metrics.Collector {
	return s.collector
}

// Addr returns the address the server is listening on, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// configureTLS checks the key pair exists and sets the minimum version. The
// certificate itself is served by a CertificateReloader.
func configureTLS(cfg config.TLSConfig) (*tls.Config, error) {
	if cfg.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file not specified")
	}
	if cfg.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file not specified")
	}

	if _, err := os.Stat(cfg.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS cert file not found: %s", cfg.CertFile)
	}
	if _, err := os.Stat(cfg.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS key file not found: %s", cfg.KeyFile)
	}

	minVersion := uint16(tls.VersionTLS12)
	switch cfg.MinVersion {
	case "", "1.2":
	case "1.3":
		minVersion = tls.VersionTLS13
	default:
		return nil, fmt.Errorf("unsupported TLS version %q", cfg.MinVersion)
	}

	return &tls.Config{MinVersion: minVersion}, nil
}
