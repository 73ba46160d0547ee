package gatekeeper

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// DefaultProtectedPrefixes require a same-site Referer or Origin.
var DefaultProtectedPrefixes = []string{"/api", "/admin", "/_next", "/dashboard"}

func (g *Gatekeeper) isProtected(path string) bool {
	for _, prefix := range g.protected {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// authorize reports whether a request for a protected path came from the
// site itself: the Referer or Origin host must be the site domain or one of
// its subdomains.
func (g *Gatekeeper) authorize(r *http.Request) bool {
	domain := g.siteDomain
	if domain == "" {
		domain = normalizeHost(r.Host)
	}
	if domain == "" {
		return false
	}

	for _, value := range []string{r.Header.Get("Referer"), r.Header.Get("Origin")} {
		if value == "" {
			continue
		}
		u, err := url.Parse(value)
		if err != nil {
			continue
		}
		host := normalizeHost(u.Host)
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}

func normalizePrefixes(prefixes []string) []string {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, strings.TrimSuffix(p, "/"))
	}
	return out
}
