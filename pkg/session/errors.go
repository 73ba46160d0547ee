package session

import "errors"

var (
	// ErrSessionNotFound indicates neither tier holds a session record
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionExpired indicates the authoritative record timed out or passed its absolute expiry
	ErrSessionExpired = errors.New("session.expired")

	// ErrCorruptRecord indicates a stored value could not be decoded
	ErrCorruptRecord = errors.New("session.corrupt_record")

	// ErrNoStorage indicates the required storage tier is unavailable
	ErrNoStorage = errors.New("session.no_storage")

	// ErrInvalidIdentity indicates sign-in was attempted without an email
	ErrInvalidIdentity = errors.New("session.invalid_identity")

	// ErrKeyNotFound is returned by Storage implementations for absent keys
	ErrKeyNotFound = errors.New("session.key_not_found")
)
