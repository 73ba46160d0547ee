package ratelimiter

import "errors"

var (
	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("ratelimiter.invalid_config")

	// ErrEmptyKey is returned when a hit is recorded without a key.
	ErrEmptyKey = errors.New("ratelimiter.empty_key")

	// ErrStoreUnavailable indicates that the store backend could not be reached.
	ErrStoreUnavailable = errors.New("ratelimiter.store_unavailable")
)
