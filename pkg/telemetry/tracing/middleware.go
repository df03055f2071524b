package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/ipecho/pkg/telemetry/logging"
)

// Span attribute keys.
const (
	AttrMethod    = "http.request.method"
	AttrPath      = "url.path"
	AttrStatus    = "http.response.status_code"
	AttrUserAgent = "user_agent.original"
	AttrRoute     = "http.route"
	AttrRequestID = "ipecho.request_id"
)

// RouteFunc names the route a request targets. It returns "" for a path
// outside the route table so that span names stay low-cardinality.
type RouteFunc func(r *http.Request) string

// Middleware starts a server span for every request, continuing any trace
// the client propagated in traceparent. The span is named after the method
// and, when route knows it, the route. Responses with a 5xx status mark the
// span as failed.
//
// A disabled tracer returns next unchanged.
func (t *Tracer) Middleware(route RouteFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !t.enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := t.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			name := r.Method
			attrs := []attribute.KeyValue{
				attribute.String(AttrMethod, r.Method),
				attribute.String(AttrPath, r.URL.Path),
				attribute.String(AttrUserAgent, r.UserAgent()),
			}
			if route != nil {
				if rt := route(r); rt != "" {
					name += " " + rt
					attrs = append(attrs, attribute.String(AttrRoute, rt))
				}
			}
			if id := logging.GetRequestID(ctx); id != "" {
				attrs = append(attrs, attribute.String(AttrRequestID, id))
			}

			ctx, span := t.tracer.Start(ctx, name,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(ctx))

			span.SetAttributes(attribute.Int(AttrStatus, sw.status))
			if sw.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(sw.status))
			}
		})
	}
}

// statusWriter records the status code written through it.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
