package gatekeeper

import "errors"

var (
	ErrMissingClassifier = errors.New("gatekeeper.missing_classifier")
	ErrMissingLimiter    = errors.New("gatekeeper.missing_limiter")
	ErrInvalidConfig     = errors.New("gatekeeper.invalid_config")
)
