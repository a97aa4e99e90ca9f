package filter

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
)

// Query-string keys.
const (
	KeySkip      = "skip"
	KeyLimit     = "limit"
	KeySearch    = "search"
	KeySortBy    = "sortBy"
	KeySortOrder = "sortOrder"
	KeyTag       = "tag"
)

// AllTags is the tag value meaning "no tag filter". It is read and written
// as an absent tag.
const AllTags = "all"

// DefaultLimit is the page size used when none is set.
const DefaultLimit = 10

// LimitOptions are the accepted page sizes.
var LimitOptions = []int{10, 20, 30}

// SortBy names the field posts are ordered by.
type SortBy string

// Sort fields.
const (
	SortNone        SortBy = ""
	SortByID        SortBy = "id"
	SortByTitle     SortBy = "title"
	SortByReactions SortBy = "reactions"
)

// Valid reports whether s is a known sort field.
func (s SortBy) Valid() bool {
	switch s {
	case SortNone, SortByID, SortByTitle, SortByReactions:
		return true
	}
	return false
}

// SortOrder is the sort direction.
type SortOrder string

// Sort directions.
const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Valid reports whether o is asc or desc.
func (o SortOrder) Valid() bool {
	return o == Asc || o == Desc
}

// State is the typed view of the filter query string.
type State struct {
	Skip        int
	Limit       int
	SearchQuery string
	SelectedTag string
	SortBy      SortBy
	SortOrder   SortOrder
}

// DefaultState returns the state an empty query string parses to.
func DefaultState() State {
	return State{Limit: DefaultLimit, SortOrder: Asc}
}

// Parse reads a State from query values. Absent or malformed values take
// their defaults; it never fails.
func Parse(values url.Values) State {
	s := DefaultState()

	if v, err := strconv.Atoi(values.Get(KeySkip)); err == nil && v > 0 {
		s.Skip = v
	}
	if v, err := strconv.Atoi(values.Get(KeyLimit)); err == nil && slices.Contains(LimitOptions, v) {
		s.Limit = v
	}
	s.SearchQuery = values.Get(KeySearch)
	if tag := values.Get(KeyTag); tag != AllTags {
		s.SelectedTag = tag
	}
	if by := SortBy(values.Get(KeySortBy)); by.Valid() {
		s.SortBy = by
	}
	if SortOrder(values.Get(KeySortOrder)) == Desc {
		s.SortOrder = Desc
	}
	return s
}

// Values encodes s minimally: fields at their default are omitted.
func (s State) Values() url.Values {
	v := url.Values{}
	if s.Skip > 0 {
		v.Set(KeySkip, strconv.Itoa(s.Skip))
	}
	if s.Limit != DefaultLimit && s.Limit > 0 {
		v.Set(KeyLimit, strconv.Itoa(s.Limit))
	}
	if s.SearchQuery != "" {
		v.Set(KeySearch, s.SearchQuery)
	}
	if s.SelectedTag != "" {
		v.Set(KeyTag, s.SelectedTag)
	}
	if s.SortBy != SortNone {
		v.Set(KeySortBy, string(s.SortBy))
	}
	if s.SortOrder == Desc {
		v.Set(KeySortOrder, string(Desc))
	}
	return v
}

// Validate checks the invariants Parse guarantees, for hand-built states.
func (s State) Validate() error {
	if !slices.Contains(LimitOptions, s.Limit) {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, s.Limit)
	}
	if !s.SortBy.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSortBy, s.SortBy)
	}
	if !s.SortOrder.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSortOrder, s.SortOrder)
	}
	return nil
}

// Pagination returns the pagination view of s for a result of total items.
func (s State) Pagination(total int) Pagination {
	return Pagination{Total: total, Skip: s.Skip, Limit: s.Limit}
}

// Patch is a partial update. Nil fields are left untouched; an empty
// string or a zero skip removes the key from the query string.
type Patch struct {
	Skip        *int
	Limit       *int
	SearchQuery *string
	SelectedTag *string
	SortBy      *SortBy
	SortOrder   *SortOrder
}

// Ptr returns a pointer to v, for building a Patch.
func Ptr[T any](v T) *T {
	return &v
}
