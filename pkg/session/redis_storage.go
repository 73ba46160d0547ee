package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage is the browser-scoped tier backed by Redis. Values survive
// process restarts.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ExpiringStorage = (*RedisStorage)(nil)

// RedisStorageOption configures a RedisStorage.
type RedisStorageOption func(*RedisStorage)

// WithRedisPrefix namespaces every key, e.g. per browser profile.
func WithRedisPrefix(prefix string) RedisStorageOption {
	return func(s *RedisStorage) {
		s.prefix = prefix
	}
}

// WithRedisTTL applies an expiry to values written with Set.
// Zero keeps them until deleted.
func WithRedisTTL(ttl time.Duration) RedisStorageOption {
	return func(s *RedisStorage) {
		s.ttl = ttl
	}
}

// NewRedisStorage creates a storage over client.
func NewRedisStorage(client redis.UniversalClient, opts ...RedisStorageOption) *RedisStorage {
	s := &RedisStorage{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements Storage.
func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Set implements Storage.
func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, s.ttl).Err()
}

// SetUntil implements ExpiringStorage. A past expiry deletes the key.
func (s *RedisStorage) SetUntil(ctx context.Context, key, value string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, key)
	}
	return s.client.Set(ctx, s.key(key), value, ttl).Err()
}

// Delete implements Storage.
func (s *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.client.Del(ctx, full...).Err()
}

func (s *RedisStorage) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}
