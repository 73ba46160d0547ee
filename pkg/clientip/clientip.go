package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Header names understood by the default resolver.
const (
	HeaderForwardedFor   = "X-Forwarded-For"
	HeaderRealIP         = "X-Real-IP"
	HeaderCFConnectingIP = "CF-Connecting-IP"
)

// DefaultHeaders is the header priority used by GetIP.
var DefaultHeaders = []string{HeaderForwardedFor, HeaderRealIP, HeaderCFConnectingIP}

var defaultResolver = NewResolver(DefaultHeaders...)

// Resolver extracts client addresses using an ordered list of headers.
type Resolver struct {
	headers []string
}

// NewResolver creates a resolver that trusts the given headers in order.
// With no headers only RemoteAddr is consulted.
func NewResolver(headers ...string) *Resolver {
	h := make([]string, 0, len(headers))
	for _, name := range headers {
		if name = strings.TrimSpace(name); name != "" {
			h = append(h, http.CanonicalHeaderKey(name))
		}
	}
	return &Resolver{headers: h}
}

// GetIP returns the client address using DefaultHeaders.
func GetIP(r *http.Request) string {
	return defaultResolver.Resolve(r)
}

// Resolve returns the normalized client address or "" if none is valid.
func (res *Resolver) Resolve(r *http.Request) string {
	for _, name := range res.headers {
		value := r.Header.Get(name)
		if value == "" {
			continue
		}
		// Only X-Forwarded-For style headers carry lists, but splitting is
		// harmless for single-value headers.
		for part := range strings.SplitSeq(value, ",") {
			if ip := parseIP(part); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP validates and normalizes an address. IPv4-mapped IPv6 addresses
// are unmapped so one client never produces two keys.
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return ""
	}
	return addr.Unmap().WithZone("").String()
}
