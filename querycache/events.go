package querycache

// EventType names a cache change.
type EventType string

// Cache change events.
const (
	EventFetched     EventType = "fetched"
	EventFetchFailed EventType = "fetch_failed"
	EventUpdated     EventType = "updated"
	EventInvalidated EventType = "invalidated"
	EventRemoved     EventType = "removed"
	EventRolledBack  EventType = "rolled_back"
)

// Event describes one change to one key.
type Event struct {
	Type EventType
	Key  Key
	Err  error
}

// Listener receives cache events. Listeners run synchronously on the
// goroutine that caused the change, after the cache lock is released.
type Listener func(Event)

// Subscribe registers fn and returns a function that unregisters it.
func (c *Cache) Subscribe(fn Listener) (cancel func()) {
	if c == nil || fn == nil {
		return func() {}
	}

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// emit delivers events to a snapshot of the current listeners.
// Must be called without c.mu held.
func (c *Cache) emit(events ...Event) {
	if len(events) == 0 {
		return
	}

	c.mu.Lock()
	listeners := make([]Listener, 0, len(c.subs))
	for _, fn := range c.subs {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, ev := range events {
		for _, fn := range listeners {
			fn(ev)
		}
	}
}
