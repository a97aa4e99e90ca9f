package filter

import "errors"

// Sentinel errors for filter updates.
var (
	ErrNilLocation      = errors.New("filter: location is nil")
	ErrInvalidLimit     = errors.New("filter: limit must be one of the page size options")
	ErrInvalidSortBy    = errors.New("filter: unknown sort field")
	ErrInvalidSortOrder = errors.New("filter: sort order must be asc or desc")
)
