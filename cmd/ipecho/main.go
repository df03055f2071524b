// ipecho is a what-is-my-IP HTTP service.
//
// It reports back to each caller what the server observes about the request:
// the client address, the User-Agent and the full header set, as plain text
// or JSON.
//
// Usage:
//
//	# Start server with default configuration
//	ipecho run
//
//	# Start with custom configuration file
//	ipecho run --config /path/to/config.yaml
//
//	# List the exposed routes
//	ipecho routes
//
//	# Check a configuration file
//	ipecho validate --config /path/to/config.yaml
//
//	# Show version information
//	ipecho version
package main

func main() {
	Execute()
}
