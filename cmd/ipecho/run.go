package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ipecho/pkg/cli"
	"mercator-hq/ipecho/pkg/config"
	"mercator-hq/ipecho/pkg/server"
	"mercator-hq/ipecho/pkg/telemetry/health"
	"mercator-hq/ipecho/pkg/telemetry/logging"
	"mercator-hq/ipecho/pkg/telemetry/summary"
	"mercator-hq/ipecho/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the ipecho server",
	Long: `Start the ipecho server with the specified configuration.

The server listens on the configured address and serves the introspection
routes together with /healthz, /readyz, /version and the metrics endpoint.
Changes to the log level in the configuration file are applied without a
restart.

Examples:
  # Start with default config
  ipecho run

  # Start with custom config
  ipecho run --config /etc/ipecho/config.yaml

  # Override listen address
  ipecho run --listen 127.0.0.1:9000

  # Validate config without starting server
  ipecho run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" || runFlags.logLevel != "" {
		if runFlags.listenAddress != "" {
			cfg.Server.ListenAddress = runFlags.listenAddress
		}
		if runFlags.logLevel != "" {
			cfg.Telemetry.Logging.Level = runFlags.logLevel
		}
		if err := config.Validate(cfg); err != nil {
			return cli.NewConfigError("", err.Error())
		}
	}

	logger, err := logging.New(logging.Config{
		Level:         cfg.Telemetry.Logging.Level,
		Format:        cfg.Telemetry.Logging.Format,
		AddSource:     cfg.Telemetry.Logging.AddSource,
		MaskAddresses: cfg.Telemetry.Logging.MaskAddresses,
		Writer:        os.Stdout,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	if err := serve(ctx, cfg, logger, out); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// serve runs the server with its supporting services until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, logger *logging.Logger, out io.Writer) error {
	tracer, err := tracing.New(cfg.Telemetry.Tracing, tracing.WithVersion(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	checker := health.New(0)
	srv, err := server.NewServer(cfg,
		server.WithLogger(logger.Slog()),
		server.WithChecker(checker),
		server.WithTracer(tracer),
		server.WithVersion(versionInfo()),
	)
	if err != nil {
		return err
	}

	if cfg.Telemetry.Summary.Enabled && srv.Collector() != nil {
		scheduler := summary.NewScheduler(srv.Collector(), cfg.Telemetry.Summary.Schedule, logger.Slog())
		if err := scheduler.Start(ctx); err != nil {
			logger.Warn("failed to start traffic summary", "error", err)
		} else {
			defer scheduler.Stop()
			if next := scheduler.NextRun(); next != nil {
				logger.Debug("traffic summary scheduled", "next_run", next)
			}
		}
	}

	if stopWatch := watchConfig(ctx, logger); stopWatch != nil {
		defer stopWatch()
	}

	printBanner(out, cfg, srv)

	if err := srv.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// watchConfig reloads the log level when cfgFile changes. It returns nil when
// there is no file to watch.
func watchConfig(ctx context.Context, logger *logging.Logger) func() {
	if cfgFile == "" {
		return nil
	}
	if _, err := os.Stat(cfgFile); errors.Is(err, os.ErrNotExist) {
		logger.Debug("configuration file not found, hot reload disabled", "path", cfgFile)
		return nil
	}

	watcher, err := config.NewWatcher(cfgFile, 0, logger.Slog())
	if err != nil {
		logger.Warn("failed to create configuration watcher", "error", err)
		return nil
	}

	go func() {
		err := watcher.Watch(ctx, func(newCfg *config.Config) {
			if runFlags.logLevel != "" {
				return
			}
			if err := logger.SetLevel(newCfg.Telemetry.Logging.Level); err != nil {
				logger.Error("failed to apply log level", "error", err)
				return
			}
			logger.Info("log level updated", "level", newCfg.Telemetry.Logging.Level)
		})
		if err != nil {
			logger.Error("configuration watcher failed", "error", err)
		}
	}()

	return func() {
		if err := watcher.Stop(); err != nil {
			logger.Warn("failed to stop configuration watcher", "error", err)
		}
	}
}

func printBanner(out io.Writer, cfg *config.Config, srv *server.Server) {
	fmt.Fprintf(out, "ipecho v%s\n", Version)
	fmt.Fprintf(out, "Loading configuration from: %s\n", cfgFile)
	fmt.Fprintf(out, "✓ %d routes exposed\n", len(srv.Table().Paths()))

	scheme := "http"
	if cfg.Security.TLS.Enabled {
		scheme = "https"
	}
	fmt.Fprintf(out, "✓ Listening on %s://%s\n", scheme, cfg.Server.ListenAddress)
	fmt.Fprintf(out, "✓ Health endpoint: %s\n", health.ReadinessPath)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: %s\n", cfg.Telemetry.Metrics.Path)
	}
	if cfg.Telemetry.Tracing.Enabled {
		fmt.Fprintf(out, "✓ Tracing to: %s\n", cfg.Telemetry.Tracing.Endpoint)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")
}
