package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"moul.io/http2curl"
)

// responseWriter wraps http.ResponseWriter to capture the status code and
// the number of body bytes written.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code before writing.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write ensures WriteHeader is called if not already done.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggingMiddleware logs each request with structured logging.
//
// At debug level the request is also logged as an equivalent curl command,
// which makes a reported oddity easy to replay:
//
//	{"level":"DEBUG","msg":"request started","method":"GET","path":"/ip",
//	 "curl":"curl -X 'GET' -H 'Accept: */*' 'http://example.com/ip'", ...}
//
// Completion is logged at info, warn for 4xx and error for 5xx:
//
//	{"level":"INFO","msg":"request completed","method":"GET","path":"/ip",
//	 "status":200,"bytes":12,"latency_ms":0,"remote_addr":"203.0.113.5:51342",
//	 "user_agent":"curl/8.0.1","request_id":"0b6f..."}
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.DebugContext(ctx, "request started",
					"method", r.Method,
					"path", r.URL.Path,
					"curl", curlCommand(r),
				)
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			level := slog.LevelInfo
			if rw.statusCode >= 500 {
				level = slog.LevelError
			} else if rw.statusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(ctx, level, "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"bytes", rw.bytes,
				"latency_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// curlCommand renders r as a curl invocation against the host it was sent to.
func curlCommand(r *http.Request) string {
	c := r.Clone(r.Context())
	c.Body = nil
	c.URL.Host = r.Host
	c.URL.Scheme = "http"
	if r.TLS != nil {
		c.URL.Scheme = "https"
	}

	cmd, err := http2curl.GetCurlCommand(c)
	if err != nil {
		return ""
	}
	return cmd.String()
}
