package ratelimiter

import "time"

// Config defines a fixed window.
type Config struct {
	Limit  int           `env:"LIMIT" envDefault:"100"`  // Requests allowed per window
	Window time.Duration `env:"WINDOW" envDefault:"15m"` // Window length, measured from the first hit
}

func (c Config) validate() error {
	if c.Limit <= 0 {
		return ErrInvalidConfig
	}
	if c.Window <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Result contains the outcome of a single hit.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int       // Requests left in the current window, never negative
	ResetAt   time.Time // When the current window closes
}

// RetryAfter returns how long the caller should wait before the next attempt.
// Returns 0 if the request was allowed.
func (r Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return max(0, time.Until(r.ResetAt))
}
