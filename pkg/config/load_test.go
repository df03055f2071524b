package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ipecho.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:9090"
  read_timeout: "5s"

routes:
  enabled: ["/", "/ip", "/json/ip"]

proxy:
  trust_forwarded_headers: false

telemetry:
  logging:
    level: "debug"
    format: "text"
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:9090" {
		t.Errorf("expected listen address %q, got %q", "127.0.0.1:9090", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("expected read timeout %v, got %v", 5*time.Second, cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("expected default write timeout, got %v", cfg.Server.WriteTimeout)
	}
	if !reflect.DeepEqual(cfg.Routes.Enabled, []string{"/", "/ip", "/json/ip"}) {
		t.Errorf("unexpected routes: %v", cfg.Routes.Enabled)
	}
	if cfg.Proxy.TrustForwardedHeaders {
		t.Error("expected forwarded headers to be distrusted")
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics to be disabled")
	}
	if !cfg.Telemetry.Summary.Enabled {
		t.Error("expected summary to stay enabled by default")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for a missing file, got error: %v", err)
	}
	if !reflect.DeepEqual(cfg, NewDefault()) {
		t.Errorf("expected default configuration, got %+v", cfg)
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
routes:
  enabled: ["/ip", "/nope"]
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Errors[0].Field != "routes.enabled[1]" {
		t.Errorf("unexpected field %q", verr.Errors[0].Field)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:9090"
telemetry:
  logging:
    level: "info"
`)

	t.Setenv("IPECHO_SERVER_LISTEN_ADDRESS", "0.0.0.0:7070")
	t.Setenv("IPECHO_SERVER_READ_TIMEOUT", "3s")
	t.Setenv("IPECHO_ROUTES_ENABLED", "/, /ip ,,/json/all")
	t.Setenv("IPECHO_PROXY_TRUST_FORWARDED_HEADERS", "false")
	t.Setenv("IPECHO_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("IPECHO_TELEMETRY_SUMMARY_SCHEDULE", "*/5 * * * *")
	t.Setenv("IPECHO_TELEMETRY_TRACING_ENABLED", "true")
	t.Setenv("IPECHO_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:7070" {
		t.Errorf("expected env listen address, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("expected 3s read timeout, got %v", cfg.Server.ReadTimeout)
	}
	if !reflect.DeepEqual(cfg.Routes.Enabled, []string{"/", "/ip", "/json/all"}) {
		t.Errorf("unexpected routes: %v", cfg.Routes.Enabled)
	}
	if cfg.Proxy.TrustForwardedHeaders {
		t.Error("expected forwarded headers to be distrusted")
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected warn, got %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Summary.Schedule != "*/5 * * * *" {
		t.Errorf("unexpected schedule %q", cfg.Telemetry.Summary.Schedule)
	}
	if !cfg.Telemetry.Tracing.Enabled || cfg.Telemetry.Tracing.SampleRatio != 0.25 {
		t.Errorf("unexpected tracing config %+v", cfg.Telemetry.Tracing)
	}
}

func TestLoadConfigWithEnvOverrides_BadValue(t *testing.T) {
	t.Setenv("IPECHO_SERVER_READ_TIMEOUT", "soon")
	t.Setenv("IPECHO_SECURITY_TLS_ENABLED", "maybe")
	t.Setenv("IPECHO_TELEMETRY_TRACING_SAMPLE_RATIO", "half")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil {
		t.Fatal("expected error for unparseable overrides")
	}
	for _, want := range []string{"IPECHO_SERVER_READ_TIMEOUT", "IPECHO_SECURITY_TLS_ENABLED", "IPECHO_TELEMETRY_TRACING_SAMPLE_RATIO"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadConfigWithEnvOverrides_OverrideFailsValidation(t *testing.T) {
	t.Setenv("IPECHO_TELEMETRY_LOGGING_LEVEL", "verbose")

	_, err := LoadConfigWithEnvOverrides("")
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSplitList(t *testing.T) {
	tests := map[string][]string{
		"":            nil,
		"a":           {"a"},
		" a , b ":     {"a", "b"},
		"a,,b,":       {"a", "b"},
		"10.0.0.0/8 ": {"10.0.0.0/8"},
	}

	for in, want := range tests {
		if got := splitList(in); !reflect.DeepEqual(got, want) {
			t.Errorf("splitList(%q) = %v, want %v", in, got, want)
		}
	}
}
