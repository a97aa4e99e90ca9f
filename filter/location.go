package filter

import (
	"net/url"
	"sync"
)

// Location is where the filter query string lives.
type Location interface {
	// Query returns a copy of the current query values.
	Query() url.Values

	// Replace overwrites the current query values.
	Replace(values url.Values)
}

// Pusher is implemented by locations with navigation history. Store.Update
// pushes a new entry on such locations instead of replacing the current one.
type Pusher interface {
	Push(values url.Values)
}

// URLLocation keeps the state in a single URL.
type URLLocation struct {
	mu sync.RWMutex
	u  *url.URL
}

// NewURLLocation parses raw into a URLLocation.
func NewURLLocation(raw string) (*URLLocation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &URLLocation{u: u}, nil
}

// Query implements Location.
func (l *URLLocation) Query() url.Values {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.u.Query()
}

// Replace implements Location.
func (l *URLLocation) Replace(values url.Values) {
	l.mu.Lock()
	l.u.RawQuery = values.Encode()
	l.mu.Unlock()
}

// String returns the full URL.
func (l *URLLocation) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.u.String()
}

// History is an in-memory navigation stack of query strings with
// back/forward, standing in for browser history.
type History struct {
	mu      sync.RWMutex
	entries []string
	index   int
}

// NewHistory creates a history whose first entry is initial.
func NewHistory(initial url.Values) *History {
	return &History{entries: []string{initial.Encode()}}
}

// Query implements Location.
func (h *History) Query() url.Values {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, _ := url.ParseQuery(h.entries[h.index])
	return v
}

// Replace implements Location.
func (h *History) Replace(values url.Values) {
	h.mu.Lock()
	h.entries[h.index] = values.Encode()
	h.mu.Unlock()
}

// Push implements Pusher. Forward entries are discarded.
func (h *History) Push(values url.Values) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], values.Encode())
	h.index++
	h.mu.Unlock()
}

// Back moves to the previous entry. It reports false at the start.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return false
	}
	h.index--
	return true
}

// Forward moves to the next entry. It reports false at the end.
func (h *History) Forward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index >= len(h.entries)-1 {
		return false
	}
	h.index++
	return true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

var (
	_ Location = (*URLLocation)(nil)
	_ Location = (*History)(nil)
	_ Pusher   = (*History)(nil)
)
