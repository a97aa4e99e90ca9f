package querycache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/postsync/observe"
)

// DefaultFetchTimeout bounds a detached fetch once every waiter has gone.
const DefaultFetchTimeout = 30 * time.Second

// Descriptor pairs a key with the fetch that fills it.
type Descriptor[T any] struct {
	Key   Key
	Fetch func(ctx context.Context) (T, error)

	// Freshness is how long fetched data is served without re-fetching.
	// Use DefaultFreshness for the cache policy default; zero always revalidates.
	Freshness time.Duration
}

// Stats is a point-in-time summary of the cache.
type Stats struct {
	Entries   int
	Fresh     int
	Stale     int
	Fetching  int
	Errors    int
	Hits      uint64
	Misses    uint64
	Fetches   uint64
	Rollbacks uint64
}

// Cache holds cached query results keyed by Key.
//
// Contract:
//   - Concurrency: safe for concurrent use. No lock is held across a fetch.
//   - Context: a reader's ctx bounds only its wait; the shared fetch runs
//     detached, bounded by the fetch timeout and Close.
//   - Errors: fetch errors are recorded on the entry and returned to every
//     waiter; prior data stays readable through Peek.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	subs    map[int]Listener
	nextSub int
	closed  bool
	stats   Stats

	group        singleflight.Group
	policy       FreshnessPolicy
	fetchTimeout time.Duration
	now          func() time.Time
	mw           *observe.Middleware

	base   context.Context
	cancel context.CancelFunc
}

// Option configures a Cache.
type Option func(*Cache)

// WithFreshnessPolicy sets the freshness policy.
func WithFreshnessPolicy(p FreshnessPolicy) Option {
	return func(c *Cache) { c.policy = p }
}

// WithFetchTimeout bounds each fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMiddleware instruments mutations and cache events.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(c *Cache) {
		if mw != nil {
			c.mw = mw
		}
	}
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:      make(map[string]*entry),
		subs:         make(map[int]Listener),
		policy:       DefaultFreshnessPolicy(),
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
		mw:           observe.NopMiddleware(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.base, c.cancel = context.WithCancel(context.Background())
	return c
}

// Close drops every entry and listener and aborts in-flight fetches.
// Later reads return ErrClosed.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.closed = true
	c.entries = make(map[string]*entry)
	c.subs = make(map[int]Listener)
	c.mu.Unlock()
	c.cancel()
}

// Query returns d's data, serving a fresh cached value or fetching it.
// Concurrent calls for the same key share one fetch.
func Query[T any](ctx context.Context, c *Cache, d Descriptor[T]) (T, error) {
	var zero T
	if c == nil {
		return zero, ErrNilCache
	}
	if d.Fetch == nil {
		return zero, ErrInvalidDescriptor
	}
	if err := d.Key.Validate(); err != nil {
		return zero, err
	}

	if v, ok, err := c.lookupFresh(d.Key); err != nil {
		return zero, err
	} else if ok {
		c.mw.Metrics().RecordCache(ctx, observe.CacheHit, d.Key.Entity())
		return typed[T](d.Key, v)
	}
	c.mw.Metrics().RecordCache(ctx, observe.CacheMiss, d.Key.Entity())

	v, err := c.fetch(ctx, d.Key, c.policy.Effective(d.Freshness), func(ctx context.Context) (any, error) {
		return d.Fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	return typed[T](d.Key, v)
}

// Prefetch warms d's key without returning the data.
func Prefetch[T any](ctx context.Context, c *Cache, d Descriptor[T]) error {
	_, err := Query(ctx, c, d)
	return err
}

// Peek returns the cached data for key without fetching, along with the
// entry state. Stale and errored entries still return their last data.
func Peek[T any](c *Cache, key Key) (T, Entry, error) {
	var zero T
	if c == nil {
		return zero, Entry{}, ErrNilCache
	}

	c.mu.Lock()
	e, ok := c.entries[key.String()]
	var snap Entry
	if ok {
		snap = e.snapshot()
	}
	c.mu.Unlock()

	if !ok || !snap.HasData {
		return zero, snap, ErrCacheMiss
	}
	v, err := typed[T](key, snap.Data)
	return v, snap, err
}

// SetData stores v under key as freshly fetched data.
func SetData[T any](c *Cache, key Key, v T, freshness time.Duration) error {
	if c == nil {
		return ErrNilCache
	}
	if err := key.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	e := c.entryLocked(key)
	e.Data = v
	e.HasData = true
	e.FetchedAt = c.now()
	e.Freshness = c.policy.Effective(freshness)
	e.Status = StatusFresh
	e.Err = nil
	e.writes++
	c.mu.Unlock()

	c.emit(Event{Type: EventUpdated, Key: key})
	return nil
}

// UpdateData replaces the data under key with fn(old). It reports false
// when the key holds no data. Entry status is left unchanged.
func UpdateData[T any](c *Cache, key Key, fn func(T) T) (bool, error) {
	if c == nil {
		return false, ErrNilCache
	}

	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if !ok || !e.HasData {
		c.mu.Unlock()
		return false, nil
	}
	old, err := typed[T](key, e.Data)
	if err != nil {
		c.mu.Unlock()
		return false, err
	}
	e.Data = fn(old)
	e.writes++
	c.mu.Unlock()

	c.emit(Event{Type: EventUpdated, Key: key})
	return true, nil
}

// UpdateMatching applies fn to every entry under prefix holding a T and
// returns how many were updated. Entries of other types are skipped.
func UpdateMatching[T any](c *Cache, prefix Key, fn func(Key, T) T) int {
	if c == nil {
		return 0
	}

	var events []Event
	c.mu.Lock()
	for _, e := range c.entries {
		if !e.HasData || !e.Key.HasPrefix(prefix) {
			continue
		}
		old, ok := e.Data.(T)
		if !ok {
			continue
		}
		e.Data = fn(e.Key, old)
		e.writes++
		events = append(events, Event{Type: EventUpdated, Key: e.Key})
	}
	c.mu.Unlock()

	c.emit(events...)
	return len(events)
}

// Invalidate marks every entry under prefix stale so the next read
// re-fetches. Cached data stays visible. It returns the number of entries
// touched.
func (c *Cache) Invalidate(prefix Key) int {
	if c == nil {
		return 0
	}

	var events []Event
	c.mu.Lock()
	for _, e := range c.entries {
		if !e.Key.HasPrefix(prefix) {
			continue
		}
		e.invalidations++
		if e.Status != StatusFetching && e.Status != StatusError {
			e.Status = StatusStale
		}
		events = append(events, Event{Type: EventInvalidated, Key: e.Key})
	}
	c.mu.Unlock()

	c.emit(events...)
	return len(events)
}

// Remove deletes every entry under prefix and returns how many were removed.
// A fetch still in flight for a removed key settles without storing.
func (c *Cache) Remove(prefix Key) int {
	if c == nil {
		return 0
	}

	var events []Event
	c.mu.Lock()
	for ks, e := range c.entries {
		if !e.Key.HasPrefix(prefix) {
			continue
		}
		delete(c.entries, ks)
		events = append(events, Event{Type: EventRemoved, Key: e.Key})
	}
	c.mu.Unlock()

	c.emit(events...)
	return len(events)
}

// Keys returns every cached key in lexical order.
func (c *Cache) Keys() []Key {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	keys := make([]Key, 0, len(c.entries))
	for _, e := range c.entries {
		keys = append(keys, e.Key)
	}
	c.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Stats returns entry counts by status and lifetime counters.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	now := c.now()
	for _, e := range c.entries {
		s.Entries++
		switch {
		case e.Status == StatusFetching:
			s.Fetching++
		case e.Status == StatusError:
			s.Errors++
		case e.IsFresh(now):
			s.Fresh++
		default:
			s.Stale++
		}
	}
	return s
}

func (c *Cache) lookupFresh(key Key) (any, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, false, ErrClosed
	}
	e, ok := c.entries[key.String()]
	if ok && e.IsFresh(c.now()) {
		c.stats.Hits++
		return e.Data, true, nil
	}
	c.stats.Misses++
	return nil, false, nil
}

// entryLocked returns the entry for key, creating an idle one if needed.
// Caller must hold c.mu.
func (c *Cache) entryLocked(key Key) *entry {
	ks := key.String()
	e, ok := c.entries[ks]
	if !ok {
		e = &entry{Entry: Entry{Key: append(Key(nil), key...), Status: StatusIdle}}
		c.entries[ks] = e
	}
	return e
}

// fetch joins or starts the single in-flight fetch for key. The caller
// stops waiting when ctx is done; the fetch itself carries on.
func (c *Cache) fetch(ctx context.Context, key Key, freshness time.Duration, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		return c.run(detached, key, freshness, fn)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *Cache) run(ctx context.Context, key Key, freshness time.Duration, fn func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	e := c.entryLocked(key)
	e.Status = StatusFetching
	e.inflight++
	startWrites, startInvalidations := e.writes, e.invalidations
	c.stats.Fetches++
	c.mu.Unlock()

	c.mw.Metrics().RecordCache(ctx, observe.CacheFetch, key.Entity())

	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()
	stop := context.AfterFunc(c.base, cancel)
	defer stop()

	v, err := fn(ctx)

	c.mu.Lock()
	e.inflight--
	current, ok := c.entries[key.String()]
	if c.closed || !ok || current != e {
		// Removed or closed while fetching: nothing to settle.
		c.mu.Unlock()
		return v, err
	}

	var ev Event
	switch {
	case err != nil:
		e.Status = StatusError
		e.Err = err
		ev = Event{Type: EventFetchFailed, Key: key, Err: err}
	case e.writes != startWrites:
		// A local write landed mid-fetch; keep it and revalidate later.
		e.Status = StatusStale
		e.Err = nil
		ev = Event{Type: EventInvalidated, Key: key}
	default:
		e.Data = v
		e.HasData = true
		e.FetchedAt = c.now()
		e.Freshness = freshness
		e.Err = nil
		e.Status = StatusFresh
		if e.invalidations != startInvalidations {
			e.Status = StatusStale
		}
		ev = Event{Type: EventFetched, Key: key}
	}
	c.mu.Unlock()

	if err != nil {
		c.mw.Logger().WithOperation(observe.OperationMeta{
			Kind:   observe.KindQuery,
			Entity: key.Entity(),
			Name:   "fetch",
			Target: key.String(),
		}).Warn(ctx, "fetch failed", observe.F("error", err.Error()))
	}
	c.emit(ev)
	return v, err
}

func typed[T any](key Key, v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: key %s holds %T", ErrTypeMismatch, key, v)
	}
	return t, nil
}
