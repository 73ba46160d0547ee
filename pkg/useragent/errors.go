package useragent

import "errors"

var (
	// ErrInvalidSignature indicates a signature pattern that does not compile.
	ErrInvalidSignature = errors.New("useragent: invalid signature pattern")

	// ErrLoadingRules indicates a rules file that cannot be read or decoded.
	ErrLoadingRules = errors.New("useragent: failed to load rules")
)
