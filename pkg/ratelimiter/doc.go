// Package ratelimiter provides fixed-window request counting keyed by an
// arbitrary string, typically a client IP.
//
// Each key owns a counter and a window reset time. The first hit opens the
// window; subsequent hits increment the counter until the limit is met, at
// which point requests are denied without further increments. Once the reset
// time passes, the counter starts over from zero.
//
// # Basic Usage
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.New(store, ratelimiter.Config{
//		Limit:  100,
//		Window: 15 * time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//
//	result, err := limiter.Allow(ctx, ip)
//	if err != nil {
//		return err
//	}
//	if !result.Allowed {
//		// respond 429, retry after result.RetryAfter()
//	}
//
// # Stores
//
// MemoryStore keeps counters in a capacity-bounded ttlcache, so idle keys are
// dropped when their window expires and the number of tracked keys never
// exceeds the configured capacity. RedisStore runs the same algorithm as a Lua
// script so that several instances share one counter per key.
package ratelimiter
