package ratelimiter

import (
	"context"
	"fmt"
)

// Limiter applies one fixed-window Config to every key.
type Limiter struct {
	store  Store
	config Config
}

// New creates a limiter over the given store.
func New(store Store, config Config) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("%w: limit=%d window=%s", err, config.Limit, config.Window)
	}

	return &Limiter{
		store:  store,
		config: config,
	}, nil
}

// Config returns the window configuration the limiter enforces.
func (l *Limiter) Config() Config {
	return l.config
}

// Allow records a request for key and reports whether it fits in the
// current window.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	count, resetAt, allowed, err := l.store.Hit(ctx, key, l.config.Limit, l.config.Window)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Allowed:   allowed,
		Limit:     l.config.Limit,
		Remaining: max(0, l.config.Limit-count),
		ResetAt:   resetAt,
	}, nil
}

// Reset forgets the window for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
