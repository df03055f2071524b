// Package logging provides structured logging on top of log/slog.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON and text output
//   - A minimum level that can be changed while the process runs
//   - Request IDs picked up from the context automatically
//   - Optional masking of client addresses
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	ctx := logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "request completed", "status", 200)
//	// {"level":"INFO","msg":"request completed","status":200,"request_id":"req-123"}
//
//	logger.SetLevel("debug") // applies to every logger derived from this one
//
// Components that take a plain *slog.Logger receive logger.Slog(); request IDs
// are still added because the handler, not the wrapper, reads the context.
package logging
