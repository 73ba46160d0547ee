package ratelimiter

import (
	"context"
	"time"
)

// Store defines the interface for rate limit storage backends.
type Store interface {
	// Hit records one request for key. When the window for key has elapsed
	// (or never existed) a new one of the given length starts now. Once count
	// reaches limit, further hits are denied and do not increment the counter.
	Hit(ctx context.Context, key string, limit int, window time.Duration) (count int, resetAt time.Time, allowed bool, err error)

	// Reset clears the rate limit state for the given key.
	Reset(ctx context.Context, key string) error
}
