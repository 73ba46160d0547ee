package useragent

import (
	"strings"
	"sync/atomic"

	"github.com/dmitrymomot/leasekit/pkg/cache"
)

const (
	defaultCacheSize = 10_000
	// User-agents longer than this are classified but never memoized.
	maxCachedLength = 512
)

// Classifier assigns a Class to user-agent strings. It is safe for
// concurrent use; SetRules swaps the rule set atomically.
type Classifier struct {
	rules     atomic.Pointer[compiledRules]
	cacheSize int
	verdicts  atomic.Pointer[cache.LRU[string, Verdict]]
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCacheSize sets how many verdicts are memoized. Zero disables memoization.
func WithCacheSize(n int) Option {
	return func(c *Classifier) { c.cacheSize = max(n, 0) }
}

// New compiles rules into a Classifier.
func New(rules Rules, opts ...Option) (*Classifier, error) {
	c := &Classifier{cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.SetRules(rules); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNew is like New but panics if the rules do not compile.
func MustNew(rules Rules, opts ...Option) *Classifier {
	c, err := New(rules, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// SetRules replaces the rule set and drops memoized verdicts.
func (c *Classifier) SetRules(rules Rules) error {
	compiled, err := compile(rules)
	if err != nil {
		return err
	}
	c.rules.Store(&compiled)
	if c.cacheSize > 0 {
		c.verdicts.Store(cache.New[string, Verdict](c.cacheSize))
	}
	return nil
}

// Classify returns the verdict for ua.
func (c *Classifier) Classify(ua string) Verdict {
	ua = strings.TrimSpace(ua)
	if ua == "" {
		return Verdict{Class: ClassUnclassified}
	}

	verdicts := c.verdicts.Load()
	if verdicts == nil || len(ua) > maxCachedLength {
		return c.classify(ua)
	}
	return verdicts.GetOrLoad(ua, c.classify)
}

// CacheStats reports memoization counters.
func (c *Classifier) CacheStats() cache.Stats {
	if verdicts := c.verdicts.Load(); verdicts != nil {
		return verdicts.Stats()
	}
	return cache.Stats{}
}

func (c *Classifier) classify(ua string) Verdict {
	rules := c.rules.Load()
	lower := strings.ToLower(ua)

	for _, crawler := range rules.crawlers {
		if strings.Contains(lower, crawler) {
			return Verdict{Class: ClassAllowCrawler, Match: crawler, BotName: BotName(ua)}
		}
	}

	for _, denied := range rules.denied {
		if strings.Contains(lower, denied) {
			return Verdict{Class: ClassBlock, Match: denied, BotName: BotName(ua)}
		}
	}

	for _, sig := range rules.signatures {
		if sig.matches(lower) {
			return Verdict{Class: ClassBlock, Match: sig.source, BotName: BotName(ua)}
		}
	}

	return Verdict{Class: ClassUnclassified}
}
