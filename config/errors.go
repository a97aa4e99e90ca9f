package config

import "errors"

// Sentinel errors for configuration validation.
var (
	ErrMissingBaseURL    = errors.New("config: base URL is required")
	ErrInvalidTimeout    = errors.New("config: timeout must be positive")
	ErrInvalidRetry      = errors.New("config: retry attempts must be at least 1")
	ErrInvalidRetryDelay = errors.New("config: retry max delay must not be below the initial delay")
	ErrInvalidBreaker    = errors.New("config: breaker failures must not be negative and need a positive reset timeout")
	ErrInvalidFreshness  = errors.New("config: freshness windows must not be negative")
	ErrInvalidDebounce   = errors.New("config: search debounce must not be negative")
)
