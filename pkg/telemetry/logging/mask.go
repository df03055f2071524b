package logging

import (
	"log/slog"
	"strings"
)

// AddressKeys are the attribute keys whose values MaskAddresses masks.
var AddressKeys = []string{"client_ip", "remote_addr", "conn_info"}

// MaskAddress hides everything after the first label of an address:
// "203.0.113.5:443" becomes "203.*.*.*" and "2001:db8::1" becomes "2001:*".
// Strings that do not look like an address are returned unchanged.
func MaskAddress(addr string) string {
	if addr == "" {
		return addr
	}
	if i := strings.IndexByte(addr, '.'); i > 0 && strings.Count(addr, ".") == 3 {
		return addr[:i] + ".*.*.*"
	}
	if i := strings.IndexByte(addr, ':'); i > 0 && strings.Count(addr, ":") > 1 {
		return addr[:i] + ":*"
	}
	return addr
}

func maskAddressAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	for _, k := range AddressKeys {
		if a.Key == k {
			return slog.String(a.Key, MaskAddress(a.Value.String()))
		}
	}
	return a
}
