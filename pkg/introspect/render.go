package introspect

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

// Content types written by the renderers.
const (
	ContentTypePlain = "text/plain; charset=utf-8"
	ContentTypeJSON  = "application/json; charset=utf-8"
)

// Response is a rendered reply: status, content type and body.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Request is the per-request input to the renderers.
type Request struct {
	// ConnInfo is the connection-info string supplied by the transport,
	// possibly proxy-resolved and possibly carrying a ":port" suffix.
	ConnInfo string

	// Headers are the request headers in transmission order.
	Headers HeaderSet
}

// Address returns the client address derived from ConnInfo.
func (r Request) Address() string {
	return ResolveAddress(r.ConnInfo)
}

// Format selects a renderer.
type Format int

// Formats, one per renderer.
const (
	PlainDefaultLanding Format = iota
	PlainAddressOnly
	PlainUserAgentOnly
	PlainHeaderDump
	PlainCombinedDump
	StructuredAddressOnly
	StructuredUserAgentOnly
	StructuredHeaderDump
	StructuredCombinedDump
)

var formatNames = [...]string{
	PlainDefaultLanding:     "plain_landing",
	PlainAddressOnly:        "plain_ip",
	PlainUserAgentOnly:      "plain_useragent",
	PlainHeaderDump:         "plain_headers",
	PlainCombinedDump:       "plain_all",
	StructuredAddressOnly:   "json_ip",
	StructuredUserAgentOnly: "json_useragent",
	StructuredHeaderDump:    "json_headers",
	StructuredCombinedDump:  "json_all",
}

// String returns the format name used in logs and metric labels.
func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// Structured reports whether f produces JSON.
func (f Format) Structured() bool {
	return f >= StructuredAddressOnly && f <= StructuredCombinedDump
}

// Render dispatches to the renderer for f. routes is only consulted by the
// landing page.
func Render(f Format, req Request, routes []string) Response {
	switch f {
	case PlainDefaultLanding:
		return RenderLanding(req.Address(), req.Headers.UserAgent(), routes)
	case PlainAddressOnly:
		return RenderAddress(req.Address())
	case PlainUserAgentOnly:
		return RenderUserAgent(req.Headers)
	case PlainHeaderDump:
		return RenderHeaders(req.Headers)
	case PlainCombinedDump:
		return RenderAll(req.Address(), req.Headers)
	case StructuredAddressOnly:
		return RenderAddressJSON(req.Address())
	case StructuredUserAgentOnly:
		return RenderUserAgentJSON(req.Headers)
	case StructuredHeaderDump:
		return RenderHeadersJSON(req.Headers)
	case StructuredCombinedDump:
		return RenderAllJSON(req.Address(), req.Headers)
	default:
		return plain(http.StatusNotFound, "unknown format\n")
	}
}

// RenderAddress renders "<address>\n".
func RenderAddress(addr string) Response {
	return plain(http.StatusOK, addr+"\n")
}

// RenderUserAgent renders "<user-agent>\n".
func RenderUserAgent(hs HeaderSet) Response {
	return plain(http.StatusOK, hs.UserAgent()+"\n")
}

// RenderHeaders renders one "<Name>: <Value>" line per header.
func RenderHeaders(hs HeaderSet) Response {
	var sb strings.Builder
	writeHeaderLines(&sb, hs)
	return plain(http.StatusOK, sb.String())
}

// RenderAll renders "ip: <address>" followed by the header lines.
func RenderAll(addr string, hs HeaderSet) Response {
	var sb strings.Builder
	sb.WriteString("ip: ")
	sb.WriteString(addr)
	sb.WriteByte('\n')
	writeHeaderLines(&sb, hs)
	return plain(http.StatusOK, sb.String())
}

// RenderLanding answers tool-like callers with their bare address and
// everyone else with the address plus the list of routes.
func RenderLanding(addr, ua string, routes []string) Response {
	if IsToolLike(ua) {
		return RenderAddress(addr)
	}
	return plain(http.StatusOK,
		"your ip is: "+addr+"\nother routes:\n"+strings.Join(routes, "\n"))
}

// RenderAddressJSON renders {"ip": "<address>"}.
func RenderAddressJSON(addr string) Response {
	return structured(map[string]string{"ip": addr})
}

// RenderUserAgentJSON renders {"user-agent": "<user-agent>"}.
func RenderUserAgentJSON(hs HeaderSet) Response {
	return structured(map[string]string{"user-agent": hs.UserAgent()})
}

// RenderHeadersJSON renders one entry per header, keyed by the lowercased
// name. Repeated names keep the last value.
func RenderHeadersJSON(hs HeaderSet) Response {
	m := make(map[string]string, hs.Len())
	putHeaders(m, hs)
	return structured(m)
}

// RenderAllJSON renders the address under "ip" merged with the headers.
// Headers are written after the address, so a header named "ip" in any case
// wins.
func RenderAllJSON(addr string, hs HeaderSet) Response {
	m := make(map[string]string, hs.Len()+1)
	m["ip"] = addr
	putHeaders(m, hs)
	return structured(m)
}

func writeHeaderLines(sb *strings.Builder, hs HeaderSet) {
	for name, value := range hs.All() {
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteByte('\n')
	}
}

// putHeaders keys m by lowercased header name, the form HTTP/2 puts on the
// wire. The plain renderers keep the names as received.
func putHeaders(m map[string]string, hs HeaderSet) {
	for name, value := range hs.All() {
		m[strings.ToLower(name)] = value
	}
}

func plain(status int, body string) Response {
	return Response{
		Status:      status,
		ContentType: ContentTypePlain,
		Body:        []byte(body),
	}
}

// structured encodes m compactly without HTML escaping. Keys come out sorted,
// so equal inputs give equal bytes.
func structured(m map[string]string) Response {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a map[string]string cannot fail.
	_ = enc.Encode(m)

	return Response{
		Status:      http.StatusOK,
		ContentType: ContentTypeJSON,
		Body:        bytes.TrimSuffix(buf.Bytes(), []byte("\n")),
	}
}
