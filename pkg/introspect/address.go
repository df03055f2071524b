package introspect

import "strings"

// ResolveAddress returns the address portion of a connection-info string,
// i.e. everything before the first ':'. An empty input yields an empty
// address rather than an error.
//
// IPv6 literals such as "2001:db8::1" are truncated to "2001"; callers that
// need full IPv6 support must resolve the address before it reaches here.
func ResolveAddress(connInfo string) string {
	addr, _, _ := strings.Cut(connInfo, ":")
	return addr
}
