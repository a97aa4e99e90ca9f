package filter

import (
	"sync"
	"time"
)

// DefaultSearchDelay is the quiet period before a typed search is committed.
const DefaultSearchDelay = 500 * time.Millisecond

// SearchBuffer separates what the user is typing from what the filter
// state holds. Type updates the display value immediately; the value is
// committed only after the quiet period passes without another keystroke.
type SearchBuffer struct {
	mu        sync.Mutex
	display   string
	committed string
	pending   bool
	delay     time.Duration
	timer     *time.Timer
	commit    func(string)

	// gen identifies the live timer; callbacks from older timers are dropped.
	gen uint64
}

// NewSearchBuffer creates a buffer that calls commit after delay of quiet.
// A non-positive delay uses DefaultSearchDelay.
func NewSearchBuffer(initial string, delay time.Duration, commit func(string)) *SearchBuffer {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &SearchBuffer{
		display:   initial,
		committed: initial,
		delay:     delay,
		commit:    commit,
	}
}

// SearchBuffer returns a buffer that commits into the store's search query.
func (s *Store) SearchBuffer(delay time.Duration) *SearchBuffer {
	return NewSearchBuffer(s.Read().SearchQuery, delay, func(q string) {
		_, _ = s.Update(Patch{SearchQuery: &q})
	})
}

// Type records a keystroke and restarts the quiet period.
func (b *SearchBuffer) Type(value string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.display = value
	b.pending = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	b.timer = time.AfterFunc(b.delay, func() { b.fire(gen) })
}

// Display returns the latest typed value.
func (b *SearchBuffer) Display() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.display
}

// Committed returns the last value handed to commit.
func (b *SearchBuffer) Committed() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.committed
}

// Flush commits the pending value now, e.g. on Enter.
func (b *SearchBuffer) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	b.mu.Unlock()
	b.fire(gen)
}

// Stop drops any pending commit.
func (b *SearchBuffer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	b.pending = false
}

func (b *SearchBuffer) fire(gen uint64) {
	b.mu.Lock()
	if gen != b.gen || !b.pending {
		b.mu.Unlock()
		return
	}
	b.pending = false
	value := b.display
	b.committed = value
	b.mu.Unlock()

	if b.commit != nil {
		b.commit(value)
	}
}
