package querycache

import "errors"

// Sentinel errors for cache operations.
var (
	ErrNilCache          = errors.New("querycache: cache is nil")
	ErrClosed            = errors.New("querycache: cache is closed")
	ErrInvalidKey        = errors.New("querycache: key is invalid")
	ErrKeyTooLong        = errors.New("querycache: key exceeds max length")
	ErrCacheMiss         = errors.New("querycache: no cached data")
	ErrTypeMismatch      = errors.New("querycache: cached data has unexpected type")
	ErrInvalidDescriptor = errors.New("querycache: descriptor has no fetch function")
	ErrInvalidMutation   = errors.New("querycache: mutation has no mutate function")
)
