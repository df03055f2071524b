package introspect

import (
	"iter"
	"net/http"
	"slices"
	"strings"
	"unicode/utf8"
)

// DefaultUserAgent is reported when a request carries no User-Agent header.
const DefaultUserAgent = "Unknown"

// Header is a single (name, value) pair as transmitted.
type Header struct {
	Name  string
	Value string
}

// HeaderSet is an ordered, immutable view of request headers. Iteration
// follows transmission order; lookups ignore case.
type HeaderSet struct {
	pairs []Header

	// index maps a lowercased name to the position of its first occurrence.
	index map[string]int
}

// NewHeaderSet builds a HeaderSet from pairs in transmission order. The
// lowercase index is built once here so Get costs a single map lookup.
func NewHeaderSet(pairs ...Header) HeaderSet {
	hs := HeaderSet{
		pairs: slices.Clone(pairs),
		index: make(map[string]int, len(pairs)),
	}
	for i, h := range hs.pairs {
		key := strings.ToLower(h.Name)
		if _, seen := hs.index[key]; !seen {
			hs.index[key] = i
		}
	}
	return hs
}

// Get returns the value of the first header matching name, ignoring case, or
// fallback when there is none.
func (hs HeaderSet) Get(name, fallback string) string {
	if i, ok := hs.index[strings.ToLower(name)]; ok {
		return hs.pairs[i].Value
	}
	return fallback
}

// UserAgent returns the User-Agent header or DefaultUserAgent.
func (hs HeaderSet) UserAgent() string {
	return hs.Get("User-Agent", DefaultUserAgent)
}

// All yields every (name, value) pair in transmission order. The sequence may
// be ranged over any number of times.
func (hs HeaderSet) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, h := range hs.pairs {
			if !yield(h.Name, h.Value) {
				return
			}
		}
	}
}

// Len returns the number of pairs, counting repeated names separately.
func (hs HeaderSet) Len() int {
	return len(hs.pairs)
}

// FromRequest builds a HeaderSet from an incoming request.
//
// net/http does not keep the relative order of distinct header names, so the
// order produced is: Host first (net/http lifts it out of r.Header), then the
// remaining canonical names sorted, with repeated values kept in received
// order. The result is deterministic for a given request.
//
// A value that is not valid UTF-8 yields an *InvalidHeaderError.
func FromRequest(r *http.Request) (HeaderSet, error) {
	pairs := make([]Header, 0, len(r.Header)+1)

	if r.Host != "" {
		if !utf8.ValidString(r.Host) {
			return HeaderSet{}, &InvalidHeaderError{Name: "Host"}
		}
		pairs = append(pairs, Header{Name: "Host", Value: r.Host})
	}

	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		for _, value := range r.Header[name] {
			if !utf8.ValidString(value) {
				return HeaderSet{}, &InvalidHeaderError{Name: name}
			}
			pairs = append(pairs, Header{Name: name, Value: value})
		}
	}

	return NewHeaderSet(pairs...), nil
}
