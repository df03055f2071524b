package introspect

import "strings"

// toolPrefix identifies command-line HTTP clients.
const toolPrefix = "curl"

// IsToolLike reports whether ua was sent by a command-line tool. The match is
// an exact, case-sensitive prefix test.
func IsToolLike(ua string) bool {
	return strings.HasPrefix(ua, toolPrefix)
}
