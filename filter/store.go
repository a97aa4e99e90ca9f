package filter

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"sync"
)

// Store reads and updates the filter state held in a Location.
//
// Contract:
//   - Concurrency: safe for concurrent use; Update is read-merge-write under one lock.
//   - Read always re-parses the location and never caches.
type Store struct {
	mu        sync.Mutex
	loc       Location
	skipReset bool
}

// Option configures a Store.
type Option func(*Store)

// WithSkipReset controls whether a change to the search query or tag drops
// the skip offset back to the first page. Default: true.
func WithSkipReset(enabled bool) Option {
	return func(s *Store) { s.skipReset = enabled }
}

// NewStore creates a Store over loc.
func NewStore(loc Location, opts ...Option) (*Store, error) {
	if loc == nil {
		return nil, ErrNilLocation
	}
	s := &Store{loc: loc, skipReset: true}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Read parses the current state from the location.
func (s *Store) Read() State {
	return Parse(s.loc.Query())
}

// Location returns the underlying location.
func (s *Store) Location() Location {
	return s.loc
}

// Update merges p into the location's query string and returns the new
// state. Keys not named by p are preserved, including unrelated ones.
func (s *Store) Update(p Patch) (State, error) {
	if err := p.validate(); err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.loc.Query()
	before := Parse(values)

	if p.Skip != nil {
		setOrDelete(values, KeySkip, skipValue(*p.Skip))
	}
	if p.Limit != nil {
		values.Set(KeyLimit, strconv.Itoa(*p.Limit))
	}
	if p.SearchQuery != nil {
		setOrDelete(values, KeySearch, *p.SearchQuery)
	}
	if p.SelectedTag != nil {
		tag := *p.SelectedTag
		if tag == AllTags {
			tag = ""
		}
		setOrDelete(values, KeyTag, tag)
	}
	if p.SortBy != nil {
		setOrDelete(values, KeySortBy, string(*p.SortBy))
	}
	if p.SortOrder != nil {
		setOrDelete(values, KeySortOrder, string(*p.SortOrder))
	}

	if s.skipReset && p.Skip == nil {
		after := Parse(values)
		if after.SearchQuery != before.SearchQuery || after.SelectedTag != before.SelectedTag {
			values.Del(KeySkip)
		}
	}

	if pusher, ok := s.loc.(Pusher); ok {
		pusher.Push(values)
	} else {
		s.loc.Replace(values)
	}
	return Parse(values), nil
}

// Reset removes every filter key, leaving unrelated query keys alone.
func (s *Store) Reset() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.loc.Query()
	for _, k := range []string{KeySkip, KeyLimit, KeySearch, KeySortBy, KeySortOrder, KeyTag} {
		values.Del(k)
	}
	s.loc.Replace(values)
	return Parse(values)
}

// GoToPage sets skip for the 1-based page number.
func (s *Store) GoToPage(page int) (State, error) {
	cur := s.Read()
	if page < 1 {
		page = 1
	}
	return s.Update(Patch{Skip: Ptr((page - 1) * cur.Limit)})
}

func (p Patch) validate() error {
	if p.Limit != nil && !slices.Contains(LimitOptions, *p.Limit) {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, *p.Limit)
	}
	if p.SortBy != nil && !p.SortBy.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSortBy, *p.SortBy)
	}
	if p.SortOrder != nil && *p.SortOrder != "" && !p.SortOrder.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSortOrder, *p.SortOrder)
	}
	return nil
}

// skipValue clamps skip to >= 0 and renders the default as empty.
func skipValue(skip int) string {
	if skip <= 0 {
		return ""
	}
	return strconv.Itoa(skip)
}

func setOrDelete(values url.Values, key, value string) {
	if value == "" {
		values.Del(key)
		return
	}
	values.Set(key, value)
}
