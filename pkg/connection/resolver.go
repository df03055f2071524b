// Package connection derives the connection-info string for a request,
// applying reverse-proxy address resolution when it is trusted.
//
// The resolved string is handed to the introspection core untouched. It may
// still carry a ":port" suffix; splitting it is not this package's job.
package connection

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

type contextKey string

// InfoKey stores the resolved connection-info string in a request context.
const InfoKey contextKey = "connection_info"

// Resolver resolves the connection-info string of a request.
//
// When TrustForwarded is set, the first "for=" element of the Forwarded
// header wins, then the first X-Forwarded-For entry, then X-Real-IP. When
// TrustedProxies is non-empty, forwarded headers are only honoured if the
// immediate peer falls inside one of the prefixes. Otherwise the peer
// address (r.RemoteAddr) is used.
type Resolver struct {
	TrustForwarded bool
	TrustedProxies []netip.Prefix
}

// NewResolver parses cidrs and returns a Resolver.
func NewResolver(trustForwarded bool, cidrs []string) (*Resolver, error) {
	prefixes, err := ParsePrefixes(cidrs)
	if err != nil {
		return nil, err
	}
	return &Resolver{TrustForwarded: trustForwarded, TrustedProxies: prefixes}, nil
}

// ParsePrefixes parses CIDR strings. A bare address is treated as a
// single-host prefix.
func ParsePrefixes(cidrs []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		c = strings.TrimSpace(c)
		if !strings.Contains(c, "/") {
			addr, err := netip.ParseAddr(c)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(c)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, p.Masked())
	}
	return prefixes, nil
}

// Resolve returns the connection-info string for r. It returns "" only when
// nothing at all is known about the peer.
func (res *Resolver) Resolve(r *http.Request) string {
	if res.TrustForwarded && res.peerTrusted(r.RemoteAddr) {
		if v := forwardedFor(r.Header.Get("Forwarded")); v != "" {
			return v
		}
		if v := firstListElement(r.Header.Get("X-Forwarded-For")); v != "" {
			return v
		}
		if v := strings.TrimSpace(r.Header.Get("X-Real-IP")); v != "" {
			return v
		}
	}
	return r.RemoteAddr
}

func (res *Resolver) peerTrusted(remoteAddr string) bool {
	if len(res.TrustedProxies) == 0 {
		return true
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, p := range res.TrustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// forwardedFor returns the first for= value of an RFC 7239 Forwarded header
// with surrounding quotes removed.
func forwardedFor(value string) string {
	for _, element := range strings.Split(value, ",") {
		for _, pair := range strings.Split(element, ";") {
			k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
			if !ok || !strings.EqualFold(k, "for") {
				continue
			}
			if v = strings.Trim(strings.TrimSpace(v), `"`); v != "" {
				return v
			}
		}
	}
	return ""
}

func firstListElement(value string) string {
	first, _, _ := strings.Cut(value, ",")
	return strings.TrimSpace(first)
}

// Middleware resolves the connection info once per request and stores it in
// the request context.
func Middleware(res *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithInfo(r.Context(), res.Resolve(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithInfo adds a connection-info string to the context.
func WithInfo(ctx context.Context, info string) context.Context {
	return context.WithValue(ctx, InfoKey, info)
}

// FromContext returns the connection-info string stored by Middleware and
// whether one was present.
func FromContext(ctx context.Context) (string, bool) {
	info, ok := ctx.Value(InfoKey).(string)
	return info, ok
}
