package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ipecho/pkg/cli"
	"mercator-hq/ipecho/pkg/config"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "ipecho",
	Short: "ipecho - what-is-my-IP HTTP service",
	Long: `ipecho answers HTTP requests with what the server sees of them.

Routes:
  /                 address for curl, route listing for everyone else
  /ip, /raw/ip      client address
  /ua, /raw/useragent
                    User-Agent header
  /raw/headers      all request headers, Host first
  /all, /raw/all    address followed by headers
  /json/...         the same information as JSON

Configuration is read from a YAML file (default config.yaml, defaults are
used when it does not exist) and IPECHO_* environment variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}

// loadConfig loads cfgFile with environment overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, nil
}
