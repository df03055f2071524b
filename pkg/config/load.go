package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "IPECHO_"

// LoadConfig loads configuration from a YAML file at the specified path.
// A missing file yields the defaults; an empty path does too. The result is
// validated. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention IPECHO_SECTION_FIELD (e.g., IPECHO_SERVER_LISTEN_ADDRESS) and
// always take precedence over the file.
//
// The loading sequence is:
// 1. Start from defaults
// 2. Decode YAML from file on top
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func decodeFile(path string) (*Config, error) {
	cfg := NewDefault()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// A value that cannot be parsed is reported instead of silently ignored.
func applyEnvOverrides(cfg *Config) error {
	var errs []error

	str := func(name string, dst *string) {
		if val, ok := lookupEnv(name); ok {
			*dst = val
		}
	}
	list := func(name string, dst *[]string) {
		if val, ok := lookupEnv(name); ok {
			*dst = splitList(val)
		}
	}
	duration := func(name string, dst *time.Duration) {
		if val, ok := lookupEnv(name); ok {
			d, err := time.ParseDuration(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	integer := func(name string, dst *int) {
		if val, ok := lookupEnv(name); ok {
			i, err := strconv.Atoi(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = i
		}
	}
	float := func(name string, dst *float64) {
		if val, ok := lookupEnv(name); ok {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(name string, dst *bool) {
		if val, ok := lookupEnv(name); ok {
			b, err := strconv.ParseBool(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	// Server overrides
	str("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	duration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	duration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	duration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	integer("SERVER_MAX_HEADER_BYTES", &cfg.Server.MaxHeaderBytes)
	boolean("SERVER_CORS_ENABLED", &cfg.Server.CORS.Enabled)
	list("SERVER_CORS_ALLOWED_ORIGINS", &cfg.Server.CORS.AllowedOrigins)

	// Routes overrides
	list("ROUTES_ENABLED", &cfg.Routes.Enabled)

	// Proxy overrides
	boolean("PROXY_TRUST_FORWARDED_HEADERS", &cfg.Proxy.TrustForwardedHeaders)
	list("PROXY_TRUSTED_PROXIES", &cfg.Proxy.TrustedProxies)

	// Telemetry overrides
	str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	boolean("TELEMETRY_LOGGING_MASK_ADDRESSES", &cfg.Telemetry.Logging.MaskAddresses)
	boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	str("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	boolean("TELEMETRY_SUMMARY_ENABLED", &cfg.Telemetry.Summary.Enabled)
	str("TELEMETRY_SUMMARY_SCHEDULE", &cfg.Telemetry.Summary.Schedule)
	boolean("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	str("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	float("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
	str("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	boolean("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)

	// Security overrides
	boolean("SECURITY_TLS_ENABLED", &cfg.Security.TLS.Enabled)
	str("SECURITY_TLS_CERT_FILE", &cfg.Security.TLS.CertFile)
	str("SECURITY_TLS_KEY_FILE", &cfg.Security.TLS.KeyFile)
	str("SECURITY_TLS_MIN_VERSION", &cfg.Security.TLS.MinVersion)
	duration("SECURITY_TLS_RELOAD_INTERVAL", &cfg.Security.TLS.ReloadInterval)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment override: %w", errors.Join(errs...))
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	val, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

// splitList splits a comma-separated value, dropping empty elements.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
