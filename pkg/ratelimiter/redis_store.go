package ratelimiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript increments the counter at KEYS[1] unless it already reached
// ARGV[1]. The key expires ARGV[2] milliseconds after the first hit.
// Returns {count, remaining ttl in ms, allowed}.
var hitScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local ttl = redis.call("PTTL", KEYS[1])
if current >= tonumber(ARGV[1]) then
	return {current, ttl, 0}
end
current = redis.call("INCR", KEYS[1])
if current == 1 or ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
	ttl = tonumber(ARGV[2])
end
return {current, ttl, 1}
`)

// RedisStore implements Store using a shared Redis counter per key.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the namespace prepended to every counter key.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		rs.prefix = prefix
	}
}

// NewRedisStore creates a store backed by the given client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	rs := &RedisStore{
		client: client,
		prefix: "ratelimit",
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// Hit implements Store.
func (rs *RedisStore) Hit(ctx context.Context, key string, limit int, window time.Duration) (int, time.Time, bool, error) {
	if key == "" {
		return 0, time.Time{}, false, ErrEmptyKey
	}

	vals, err := hitScript.Run(ctx, rs.client, []string{rs.key(key)}, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, time.Time{}, false, errors.Join(ErrStoreUnavailable, err)
	}
	if len(vals) != 3 {
		return 0, time.Time{}, false, ErrStoreUnavailable
	}

	ttl := time.Duration(vals[1]) * time.Millisecond
	if ttl < 0 {
		ttl = window
	}

	return int(vals[0]), time.Now().Add(ttl), vals[2] == 1, nil
}

// Reset implements Store.
func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.key(key)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (rs *RedisStore) key(key string) string {
	if rs.prefix == "" {
		return key
	}
	return rs.prefix + ":" + key
}
