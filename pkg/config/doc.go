// Package config provides configuration management for ipecho.
//
// Configuration is read from a YAML file with environment variable overrides.
// Every field has a default, so the service runs without a file at all.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("ipecho.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("ipecho.yaml")
//
// A path that does not exist yields the defaults.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention IPECHO_SECTION_FIELD:
//
//   - IPECHO_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - IPECHO_ROUTES_ENABLED overrides routes.enabled (comma-separated)
//   - IPECHO_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Reloading
//
// Watcher reloads the file when it changes. Only the log level is applied to
// a running process; the route table is built once at startup.
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//
//	routes:
//	  enabled: ["/", "/ip", "/json/ip"]
//
//	proxy:
//	  trust_forwarded_headers: true
//	  trusted_proxies: ["10.0.0.0/8"]
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//	  summary:
//	    schedule: "@hourly"
package config
