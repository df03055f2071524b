package config

import "time"

// Config is the root configuration structure for ipecho.
// It contains the HTTP server settings, the exposed route set, forwarded-header
// trust, telemetry and TLS.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server"`

	// Routes selects which introspection routes are exposed.
	Routes RoutesConfig `yaml:"routes"`

	// Proxy controls whether forwarded headers set by a reverse proxy are
	// trusted when deriving the client address.
	Proxy ProxyConfig `yaml:"proxy"`

	// Telemetry contains configuration for logging, metrics, and the periodic
	// traffic summary.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security contains TLS settings.
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port".
	// Default: "0.0.0.0:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// during graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes bounds the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are written.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins. ["*"] allows any origin.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "HEAD", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers exposed to browser scripts.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// RoutesConfig selects the exposed introspection routes.
type RoutesConfig struct {
	// Enabled lists the exposed paths, each one of the canonical routes.
	// Default: every canonical route.
	Enabled []string `yaml:"enabled"`
}

// ProxyConfig controls how the client address is derived behind a reverse
// proxy.
type ProxyConfig struct {
	// TrustForwardedHeaders takes the client address from Forwarded,
	// X-Forwarded-For or X-Real-IP when present.
	// Default: true
	TrustForwardedHeaders bool `yaml:"trust_forwarded_headers"`

	// TrustedProxies restricts forwarded-header trust to peers within these
	// CIDRs. Empty trusts every peer.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Summary contains the periodic traffic summary configuration.
	Summary SummaryConfig `yaml:"summary"`

	// Tracing contains OpenTelemetry request tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit. It is reloaded when the
	// configuration file changes.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// MaskAddresses masks client addresses in log entries.
	// Default: false
	MaskAddresses bool `yaml:"mask_addresses"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "ipecho"
	Namespace string `yaml:"namespace"`

	// RequestDurationBuckets defines histogram buckets for request duration
	// in seconds.
	// Default: [0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// SummaryConfig contains the periodic traffic summary configuration.
type SummaryConfig struct {
	// Enabled controls whether the summary is logged.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression or descriptor.
	// Default: "@hourly"
	Schedule string `yaml:"schedule"`
}

// TracingConfig contains OpenTelemetry request tracing configuration.
type TracingConfig struct {
	// Enabled controls whether a span is recorded for each request.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler selects the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of root traces recorded by the "ratio"
	// sampler, between 0.0 and 1.0. Requests carrying a sampled traceparent
	// are always recorded.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "ipecho"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS on the exporter connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout bounds a single export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// TLS contains TLS configuration for the server.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS configuration.
type TLSConfig struct {
	// Enabled controls whether TLS is terminated by the server.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the TLS certificate file.
	// Required when Enabled is true.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the TLS private key file.
	// Required when Enabled is true.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept.
	// Options: "1.2", "1.3"
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the certificate and key files are checked
	// for changes. A changed pair is loaded without a restart. Zero loads
	// the pair once at startup.
	// Default: 0
	ReloadInterval time.Duration `yaml:"reload_interval"`
}
