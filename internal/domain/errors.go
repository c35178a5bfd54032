package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrBadCacheKey   = errors.New("domain: malformed session cache key")
	ErrNoSessions    = errors.New("domain: no matching sessions")
	ErrMissingAPIKey = errors.New("domain: context service api key not configured")
)
