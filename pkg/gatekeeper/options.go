package gatekeeper

import (
	"log/slog"

	"github.com/dmitrymomot/leasekit/pkg/clientip"
)

// Option configures a Gatekeeper.
type Option func(*Gatekeeper)

// WithSiteDomain sets the domain protected paths must be referred from.
func WithSiteDomain(domain string) Option {
	return func(g *Gatekeeper) {
		g.siteDomain = normalizeHost(domain)
	}
}

// WithProtectedPrefixes replaces the protected path prefixes.
func WithProtectedPrefixes(prefixes ...string) Option {
	return func(g *Gatekeeper) {
		g.protected = normalizePrefixes(prefixes)
	}
}

// WithCacheControl sets the Cache-Control value of forwarded responses.
func WithCacheControl(value string) Option {
	return func(g *Gatekeeper) {
		if value != "" {
			g.cacheControl = value
		}
	}
}

// WithIPResolver sets how the client address is determined.
func WithIPResolver(res *clientip.Resolver) Option {
	return func(g *Gatekeeper) {
		if res != nil {
			g.resolver = res
		}
	}
}

// WithLogger sets the logger for gatekeeper decisions.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gatekeeper) {
		if l != nil {
			g.logger = l
		}
	}
}
