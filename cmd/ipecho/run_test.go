package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"mercator-hq/ipecho/pkg/config"
	"mercator-hq/ipecho/pkg/telemetry/logging"
)

// syncBuffer is a bytes.Buffer safe for the server goroutine to write while
// the test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunCommand_DryRun(t *testing.T) {
	out, err := executeCommand(t, "run", "--config", missingConfig(t), "--dry-run")
	if err != nil {
		t.Fatalf("run --dry-run error = %v", err)
	}
	if !strings.Contains(out, "✓ Configuration valid") {
		t.Errorf("output = %q", out)
	}
}

func TestRunCommand_InvalidOverrides(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "log level", args: []string{"--log-level", "verbose"}},
		{name: "listen address", args: []string{"--listen", "no-port"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run", "--config", missingConfig(t), "--dry-run"}, tt.args...)
			if _, err := executeCommand(t, args...); err == nil {
				t.Error("invalid override accepted")
			}
		})
	}
}

func TestRunCommand_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `proxy:
  trust_forwarded_headers: false
  trusted_proxies: ["10.0.0.0/8"]
`)
	if _, err := executeCommand(t, "run", "--config", path, "--dry-run"); err == nil {
		t.Error("invalid configuration accepted")
	}
}

func testRunConfig() *config.Config {
	cfg := config.NewDefault()
	config.ApplyDefaults(cfg)
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 2 * time.Second
	return cfg
}

func TestServe_StopsOnCancel(t *testing.T) {
	origCfgFile := cfgFile
	defer func() { cfgFile = origCfgFile }()
	cfgFile = missingConfig(t)

	logger, err := logging.New(logging.Config{Writer: io.Discard})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	out := &syncBuffer{}
	if err := serve(ctx, testRunConfig(), logger, out); err != nil {
		t.Fatalf("serve() error = %v", err)
	}
	for _, want := range []string{"routes exposed", "Metrics endpoint: /metrics", "✓ Server stopped"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestServe_ReloadsLogLevel(t *testing.T) {
	origCfgFile := cfgFile
	defer func() { cfgFile = origCfgFile }()
	cfgFile = writeConfig(t, "telemetry:\n  logging:\n    level: info\n")
	runFlags.logLevel = ""

	logs := &syncBuffer{}
	logger, err := logging.New(logging.Config{Level: "info", Writer: logs})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, testRunConfig(), logger, io.Discard) }()

	waitFor(t, func() bool { return strings.Contains(logs.String(), "configuration watcher started") })

	if err := os.WriteFile(cfgFile, []byte("telemetry:\n  logging:\n    level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return logger.Level() == slog.LevelDebug })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() did not return after cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
