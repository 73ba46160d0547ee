package session

import "time"

// Config holds session lifecycle configuration
type Config struct {
	InactivityTimeout  time.Duration `env:"SESSION_INACTIVITY_TIMEOUT" envDefault:"30m"`
	PersistentLifetime time.Duration `env:"SESSION_PERSISTENT_LIFETIME" envDefault:"720h"`

	// CheckInterval is how often Run re-validates the authoritative record
	CheckInterval time.Duration `env:"SESSION_CHECK_INTERVAL" envDefault:"60s"`

	// ActivityThreshold is the minimum time between activity writes (0 writes on every signal)
	ActivityThreshold time.Duration `env:"SESSION_ACTIVITY_THRESHOLD" envDefault:"0s"`

	SignInPath string `env:"SESSION_SIGN_IN_PATH" envDefault:"/sign-in"`

	// KeyPrefix namespaces browser-tier keys in shared storage such as Redis
	KeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"leasekit"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		InactivityTimeout:  30 * time.Minute,
		PersistentLifetime: 30 * 24 * time.Hour,
		CheckInterval:      time.Minute,
		ActivityThreshold:  0,
		SignInPath:         "/sign-in",
		KeyPrefix:          "leasekit",
	}
}

// NewFromConfig creates a Manager over the given tiers using cfg.
func NewFromConfig(cfg Config, tab, browser Storage, opts ...Option) *Manager {
	store := NewStore(tab, browser, WithInactivityTimeout(cfg.InactivityTimeout))
	return New(store, append([]Option{WithConfig(cfg)}, opts...)...)
}
