package routes

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"mercator-hq/ipecho/pkg/connection"
	"mercator-hq/ipecho/pkg/introspect"
)

// Observation describes one dispatched request.
type Observation struct {
	Path     string
	Format   introspect.Format
	Status   int
	Duration time.Duration
	ToolLike bool
	Headers  int
}

// Observer receives an Observation for every request the dispatcher served.
type Observer interface {
	Observe(o Observation)
}

// Dispatcher serves the introspection routes of a Table.
type Dispatcher struct {
	table    *Table
	logger   *slog.Logger
	observer Observer
}

// NewDispatcher creates a dispatcher for table. logger defaults to
// slog.Default(); observer may be nil.
func NewDispatcher(table *Table, logger *slog.Logger, observer Observer) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		table:    table,
		logger:   logger,
		observer: observer,
	}
}

// ServeHTTP implements http.Handler. Unknown paths get the standard 404 and
// methods other than GET and HEAD get 405.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	format, ok := d.table.Lookup(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	resp, req := d.render(r, format)

	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.Status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(resp.Body)
	}

	if d.observer != nil {
		d.observer.Observe(Observation{
			Path:     r.URL.Path,
			Format:   format,
			Status:   resp.Status,
			Duration: time.Since(start),
			ToolLike: introspect.IsToolLike(req.Headers.UserAgent()),
			Headers:  req.Headers.Len(),
		})
	}
}

// render builds the introspection request and renders it. A header that
// cannot be decoded fails this request with a 500.
func (d *Dispatcher) render(r *http.Request, format introspect.Format) (introspect.Response, introspect.Request) {
	connInfo, ok := connection.FromContext(r.Context())
	if !ok {
		connInfo = r.RemoteAddr
	}

	headers, err := introspect.FromRequest(r)
	if err != nil {
		d.logger.ErrorContext(r.Context(), "failed to decode request headers",
			"error", err,
			"path", r.URL.Path,
		)
		return introspect.Response{
			Status:      http.StatusInternalServerError,
			ContentType: introspect.ContentTypePlain,
			Body:        []byte("internal server error\n"),
		}, introspect.Request{ConnInfo: connInfo}
	}

	req := introspect.Request{ConnInfo: connInfo, Headers: headers}
	return introspect.Render(format, req, d.table.listing), req
}
