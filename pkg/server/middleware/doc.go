// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// # Middleware Chain
//
// The server assembles the chain with Chain, outermost first:
//
//	Chain(dispatcher,
//	    RecoveryMiddleware(logger),
//	    RequestIDMiddleware,
//	    tracer.Middleware(routeName), // only when a tracer is configured
//	    LoggingMiddleware(logger),
//	    connection.Middleware(resolver),
//	    CORSMiddleware(cfg.Server.CORS),
//	)
//
// Order (innermost to outermost):
//  1. CORS: Add Cross-Origin Resource Sharing headers, answer preflights
//  2. Connection info: Resolve the client address behind trusted proxies
//  3. Logging: Log request/response details
//  4. Tracing: Start a server span, continuing a propagated trace
//  5. RequestID: Generate and propagate request ID
//  6. Recovery: Recover from panics
//
// RequestID wraps Tracing and Logging so the span and the completion record
// carry the request ID, and Tracing wraps Logging so the record carries the
// trace ID.
// Recovery is outermost so that a panic anywhere, including in logging, is
// turned into a 500 instead of a dropped connection.
package middleware
