package session

import (
	"context"
	"time"
)

// Storage keys. One constant per tier.
const (
	KeySession           = "session"
	KeyPersistentSession = "persistent_session"
)

// LegacyKeys hold flat identity blobs written by older clients. They are
// never read, only removed on sign-out.
var LegacyKeys = []string{"user", "auth_user", "userData"}

// Storage is a string key/value store backing one session tier.
type Storage interface {
	// Get returns ErrKeyNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// ExpiringStorage is implemented by storages that can drop a value on their
// own once it is no longer valid.
type ExpiringStorage interface {
	Storage
	SetUntil(ctx context.Context, key, value string, expiresAt time.Time) error
}
