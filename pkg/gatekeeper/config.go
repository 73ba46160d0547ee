package gatekeeper

import (
	"errors"
	"time"

	"github.com/dmitrymomot/leasekit/pkg/ratelimiter"
	"github.com/dmitrymomot/leasekit/pkg/useragent"
)

// Config holds gatekeeper configuration.
type Config struct {
	// SiteDomain is the registrable domain protected paths must be referred
	// from. Empty means the request Host.
	SiteDomain string `env:"GATEKEEPER_SITE_DOMAIN"`

	RateLimit  int           `env:"GATEKEEPER_RATE_LIMIT" envDefault:"100"`
	RateWindow time.Duration `env:"GATEKEEPER_RATE_WINDOW" envDefault:"15m"`

	ProtectedPrefixes []string `env:"GATEKEEPER_PROTECTED_PREFIXES" envDefault:"/api,/admin,/_next,/dashboard" envSeparator:","`
	CacheControl      string   `env:"GATEKEEPER_CACHE_CONTROL" envDefault:"public, max-age=0, must-revalidate"`

	// RulesFile is an optional YAML file overriding the classifier lists.
	RulesFile           string `env:"GATEKEEPER_RULES_FILE"`
	ClassifierCacheSize int    `env:"GATEKEEPER_CLASSIFIER_CACHE_SIZE" envDefault:"10000"`
}

// DefaultConfig returns default gatekeeper configuration.
func DefaultConfig() Config {
	return Config{
		RateLimit:           100,
		RateWindow:          15 * time.Minute,
		ProtectedPrefixes:   DefaultProtectedPrefixes,
		CacheControl:        DefaultCacheControl,
		ClassifierCacheSize: 10_000,
	}
}

// NewFromConfig builds the classifier and limiter described by cfg on top of
// store. Options are applied after the configuration.
func NewFromConfig(cfg Config, store ratelimiter.Store, opts ...Option) (*Gatekeeper, error) {
	rules := useragent.DefaultRules()
	if cfg.RulesFile != "" {
		var err error
		if rules, err = useragent.LoadRules(cfg.RulesFile); err != nil {
			return nil, err
		}
	}

	classifier, err := useragent.New(rules, useragent.WithCacheSize(cfg.ClassifierCacheSize))
	if err != nil {
		return nil, err
	}

	limiter, err := ratelimiter.New(store, ratelimiter.Config{Limit: cfg.RateLimit, Window: cfg.RateWindow})
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	base := []Option{
		WithSiteDomain(cfg.SiteDomain),
		WithCacheControl(cfg.CacheControl),
	}
	if len(cfg.ProtectedPrefixes) > 0 {
		base = append(base, WithProtectedPrefixes(cfg.ProtectedPrefixes...))
	}

	return New(classifier, limiter, append(base, opts...)...)
}
