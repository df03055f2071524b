// Package tracing records an OpenTelemetry span per HTTP request and exports
// it to an OTLP collector over gRPC.
//
// Tracing is off by default. When enabled, the server places the middleware
// inside RequestID so the request ID is attached to the span, and log
// records written with the request context carry trace_id and span_id:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: "otel-collector:4317"
//	    sampler: ratio
//	    sample_ratio: 0.1
//
// Incoming W3C traceparent and baggage headers are honored, and a sampled
// parent is always recorded regardless of sample_ratio.
package tracing
