// Package introspect describes how the server perceives a caller's request.
//
// It is the decision-making core of ipecho: everything else in the module is
// transport plumbing around it. The package has no global state and performs
// no I/O; every value is recomputed from the incoming request on every call.
//
// # Components
//
//   - ResolveAddress: derives the client address from a connection-info
//     string that may carry a trailing ":port".
//   - HeaderSet: an ordered, case-insensitive view of the request headers
//     with a dedicated user-agent accessor.
//   - IsToolLike: classifies command-line HTTP clients so the landing page
//     can answer them tersely.
//   - Render*: pure functions mapping an address and/or header set to a
//     Response in either plain text or JSON.
//
// # Address Resolution
//
// The connection-info string is split on its first colon:
//
//	ResolveAddress("203.0.113.5:51342") // "203.0.113.5"
//	ResolveAddress("")                  // ""
//
// IPv6 literals are not special-cased and are truncated at their first colon.
//
// # Rendering
//
// Plain text responses use "text/plain; charset=utf-8"; structured responses
// are a JSON object of string values served as
// "application/json; charset=utf-8". In the combined structured form the
// "ip" key is written first, so a header literally named "ip" replaces it.
//
// # Thread Safety
//
// All functions are pure. A HeaderSet is immutable after construction and may
// be shared between goroutines.
package introspect
