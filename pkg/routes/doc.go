// Package routes maps request paths to introspection renderers.
//
// The route table is declarative: a fixed list of (path, format) pairs built
// once at startup by NewTable and never modified afterwards. A deployment may
// expose a subset of the canonical paths:
//
//	/                 landing (bare address for curl, route list otherwise)
//	/ip, /raw/ip      plain address
//	/ua, /raw/useragent
//	                  plain user agent
//	/all, /raw/all    plain address and headers
//	/raw/headers      plain headers
//	/json/ip          {"ip": ...}
//	/json/useragent   {"user-agent": ...}
//	/json/headers     one entry per header
//	/json/all         address merged with headers
//
// Dispatcher serves a Table over HTTP. It reads the connection-info string
// placed in the request context by connection.Middleware and falls back to
// the peer address when the middleware is absent.
package routes
