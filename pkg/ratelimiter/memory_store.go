package ratelimiter

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultMemoryCapacity bounds the number of keys a MemoryStore tracks.
const DefaultMemoryCapacity = 100_000

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore implements Store on top of a capacity-bounded ttlcache.
// Entries expire together with their window; when the cache is full the
// least recently touched key is evicted.
type MemoryStore struct {
	mu    sync.Mutex
	cache *ttlcache.Cache[string, window]
	now   func() time.Time

	capacity  uint64
	closeOnce sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCapacity sets the maximum number of tracked keys.
// Zero means unbounded.
func WithCapacity(capacity uint64) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.capacity = capacity
	}
}

// WithClock replaces the time source used to open and close windows.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates an in-memory store and starts its expiry loop.
// Call Close to stop it.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		now:      time.Now,
		capacity: DefaultMemoryCapacity,
	}

	for _, opt := range opts {
		opt(ms)
	}

	cacheOpts := []ttlcache.Option[string, window]{
		ttlcache.WithDisableTouchOnHit[string, window](),
	}
	if ms.capacity > 0 {
		cacheOpts = append(cacheOpts, ttlcache.WithCapacity[string, window](ms.capacity))
	}
	ms.cache = ttlcache.New(cacheOpts...)

	go ms.cache.Start()

	return ms
}

// Hit implements Store.
func (ms *MemoryStore) Hit(ctx context.Context, key string, limit int, length time.Duration) (int, time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, time.Time{}, false, err
	}
	if key == "" {
		return 0, time.Time{}, false, ErrEmptyKey
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()

	var w window
	if item := ms.cache.Get(key); item != nil {
		w = item.Value()
	}

	if w.resetAt.IsZero() || !now.Before(w.resetAt) {
		w = window{resetAt: now.Add(length)}
	}

	if w.count >= limit {
		return w.count, w.resetAt, false, nil
	}

	w.count++
	// The cache TTL follows the wall clock; window boundaries are decided above.
	ms.cache.Set(key, w, max(time.Millisecond, w.resetAt.Sub(now)))

	return w.count, w.resetAt, true, nil
}

// Reset implements Store.
func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.cache.Delete(key)
	return nil
}

// Len returns the number of keys currently tracked.
func (ms *MemoryStore) Len() int {
	return ms.cache.Len()
}

// Close stops the expiry loop.
func (ms *MemoryStore) Close() {
	ms.closeOnce.Do(ms.cache.Stop)
}
