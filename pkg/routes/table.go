package routes

import (
	"fmt"
	"slices"

	"mercator-hq/ipecho/pkg/introspect"
)

// LandingPath is the root route whose response depends on the caller.
const LandingPath = "/"

// Route binds an exact request path to a renderer.
type Route struct {
	Path   string
	Format introspect.Format
}

var canonical = []Route{
	{Path: "/", Format: introspect.PlainDefaultLanding},
	{Path: "/ip", Format: introspect.PlainAddressOnly},
	{Path: "/ua", Format: introspect.PlainUserAgentOnly},
	{Path: "/all", Format: introspect.PlainCombinedDump},
	{Path: "/raw/ip", Format: introspect.PlainAddressOnly},
	{Path: "/raw/headers", Format: introspect.PlainHeaderDump},
	{Path: "/raw/useragent", Format: introspect.PlainUserAgentOnly},
	{Path: "/raw/all", Format: introspect.PlainCombinedDump},
	{Path: "/json/ip", Format: introspect.StructuredAddressOnly},
	{Path: "/json/headers", Format: introspect.StructuredHeaderDump},
	{Path: "/json/useragent", Format: introspect.StructuredUserAgentOnly},
	{Path: "/json/all", Format: introspect.StructuredCombinedDump},
}

// Canonical returns every route the service knows how to serve.
func Canonical() []Route {
	return slices.Clone(canonical)
}

// CanonicalPaths returns the paths of Canonical in order.
func CanonicalPaths() []string {
	paths := make([]string, len(canonical))
	for i, r := range canonical {
		paths[i] = r.Path
	}
	return paths
}

// Table is a fixed route table. It is built once at startup and never
// modified, so it is safe for concurrent use without locking.
type Table struct {
	routes []Route
	byPath map[string]introspect.Format

	// listing is what the landing page advertises.
	listing []string
}

// NewTable builds a table exposing the given subset of the canonical paths,
// kept in canonical order. An empty list exposes every canonical route.
func NewTable(paths []string) (*Table, error) {
	enabled := make(map[string]bool, len(paths))
	for _, p := range paths {
		if !slices.ContainsFunc(canonical, func(r Route) bool { return r.Path == p }) {
			return nil, fmt.Errorf("unknown route %q", p)
		}
		enabled[p] = true
	}

	t := &Table{byPath: make(map[string]introspect.Format)}
	for _, r := range canonical {
		if len(enabled) > 0 && !enabled[r.Path] {
			continue
		}
		t.routes = append(t.routes, r)
		t.byPath[r.Path] = r.Format
		if r.Path != LandingPath {
			t.listing = append(t.listing, r.Path)
		}
	}
	return t, nil
}

// Routes returns a copy of the exposed routes.
func (t *Table) Routes() []Route {
	return slices.Clone(t.routes)
}

// Paths returns the exposed paths.
func (t *Table) Paths() []string {
	paths := make([]string, len(t.routes))
	for i, r := range t.routes {
		paths[i] = r.Path
	}
	return paths
}

// Lookup returns the format served at path.
func (t *Table) Lookup(path string) (introspect.Format, bool) {
	f, ok := t.byPath[path]
	return f, ok
}

// Listing returns the paths advertised on the landing page.
func (t *Table) Listing() []string {
	return slices.Clone(t.listing)
}
