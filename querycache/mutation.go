package querycache

import (
	"context"

	"github.com/jonwraymond/postsync/observe"
)

// OptimisticPatch records one local write made before the server answered.
type OptimisticPatch struct {
	Key     Key
	Prev    any
	HadPrev bool
	Next    any

	prev    entry
	existed bool
}

// Tx collects the optimistic patches of one mutation so they can be
// rolled back together.
type Tx struct {
	c       *Cache
	patches []OptimisticPatch
}

// Patches returns the patches applied so far, oldest first.
func (tx *Tx) Patches() []OptimisticPatch {
	out := make([]OptimisticPatch, len(tx.patches))
	copy(out, tx.patches)
	return out
}

// Update rewrites the data under key with fn, recording the prior entry.
// fn receives the current data and whether there was any; returning
// write=false leaves the entry untouched.
func (tx *Tx) Update(key Key, fn func(prev any, ok bool) (next any, write bool)) bool {
	c := tx.c
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}

	e, exists := c.entries[key.String()]
	var prev any
	hadPrev := exists && e.HasData
	if hadPrev {
		prev = e.Data
	}

	next, write := fn(prev, hadPrev)
	if !write {
		c.mu.Unlock()
		return false
	}

	if !exists {
		e = c.entryLocked(key)
	}
	patch := OptimisticPatch{
		Key:     e.Key,
		Prev:    prev,
		HadPrev: hadPrev,
		Next:    next,
		prev:    *e,
		existed: exists,
	}
	e.Data = next
	e.HasData = true
	if e.Status == StatusIdle {
		e.Status = StatusStale
	}
	e.writes++
	tx.patches = append(tx.patches, patch)
	c.mu.Unlock()

	c.emit(Event{Type: EventUpdated, Key: key})
	return true
}

// rollback restores every patch in reverse order.
func (tx *Tx) rollback(ctx context.Context) int {
	c := tx.c
	var events []Event

	c.mu.Lock()
	for i := len(tx.patches) - 1; i >= 0; i-- {
		p := tx.patches[i]
		ks := p.Key.String()
		if !p.existed {
			delete(c.entries, ks)
		} else {
			e := c.entryLocked(p.Key)
			e.Data = p.prev.Data
			e.HasData = p.prev.HasData
			e.FetchedAt = p.prev.FetchedAt
			e.Freshness = p.prev.Freshness
			e.Err = p.prev.Err
			e.Status = restoredStatus(p.prev.Status, e.inflight)
			e.writes++
		}
		c.stats.Rollbacks++
		events = append(events, Event{Type: EventRolledBack, Key: p.Key})
	}
	c.mu.Unlock()

	for _, ev := range events {
		c.mw.Metrics().RecordCache(ctx, observe.CacheRollback, ev.Key.Entity())
	}
	c.emit(events...)
	n := len(tx.patches)
	tx.patches = nil
	return n
}

// restoredStatus is the status a rolled back entry takes. A fetch that was
// running when the patch was taken may have settled since; without one in
// flight the entry is stale.
func restoredStatus(prev Status, inflight int) Status {
	switch {
	case inflight > 0:
		return StatusFetching
	case prev == StatusFetching:
		return StatusStale
	default:
		return prev
	}
}

// Patch applies fn to the T cached under key. Keys with no data or data of
// another type are left alone and Patch reports false.
func Patch[T any](tx *Tx, key Key, fn func(T) T) bool {
	return tx.Update(key, func(prev any, ok bool) (any, bool) {
		if !ok {
			return nil, false
		}
		old, isT := prev.(T)
		if !isT {
			return nil, false
		}
		return fn(old), true
	})
}

// PatchMatching applies Patch to every key under prefix and returns how
// many entries were rewritten.
func PatchMatching[T any](tx *Tx, prefix Key, fn func(Key, T) T) int {
	n := 0
	for _, key := range tx.c.Keys() {
		if !key.HasPrefix(prefix) {
			continue
		}
		k := key
		if Patch(tx, k, func(old T) T { return fn(k, old) }) {
			n++
		}
	}
	return n
}

// Mutation describes one write: its optimistic step, the network call and
// how the cache settles afterwards. Fn is never retried.
type Mutation[V, R any] struct {
	// Entity and Name label the mutation in telemetry.
	Entity string
	Name   string

	// OnMutate patches the cache before Fn runs. An error aborts the
	// mutation after rolling back any patch it made.
	OnMutate func(tx *Tx, vars V) error

	// Fn performs the write.
	Fn func(ctx context.Context, vars V) (R, error)

	// OnSuccess merges the server result into the cache.
	OnSuccess func(tx *Tx, vars V, result R)

	// OnError runs after rollback.
	OnError func(vars V, err error)

	// Invalidate names the prefixes to mark stale after success.
	Invalidate func(vars V, result R) []Key
}

// Mutate runs m with vars against c.
//
// OnMutate patches are applied synchronously before the network call. On
// failure they are restored exactly, in reverse order, and the error is
// returned. On success OnSuccess merges the result and every prefix from
// Invalidate is marked stale.
func Mutate[V, R any](ctx context.Context, c *Cache, m Mutation[V, R], vars V) (R, error) {
	var result R
	if c == nil {
		return result, ErrNilCache
	}
	if m.Fn == nil {
		return result, ErrInvalidMutation
	}

	meta := observe.OperationMeta{Kind: observe.KindMutation, Entity: m.Entity, Name: m.Name}
	err := c.mw.Run(ctx, meta, func(ctx context.Context) error {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return ErrClosed
		}

		tx := &Tx{c: c}
		if m.OnMutate != nil {
			if err := m.OnMutate(tx, vars); err != nil {
				tx.rollback(ctx)
				return err
			}
		}

		res, err := m.Fn(ctx, vars)
		if err != nil {
			if n := tx.rollback(ctx); n > 0 {
				c.mw.Logger().WithOperation(meta).Warn(ctx, "mutation rolled back",
					observe.F("patches", n),
					observe.F("error", err.Error()),
				)
			}
			if m.OnError != nil {
				m.OnError(vars, err)
			}
			return err
		}

		if m.OnSuccess != nil {
			m.OnSuccess(tx, vars, res)
		}
		if m.Invalidate != nil {
			for _, prefix := range m.Invalidate(vars, res) {
				c.Invalidate(prefix)
			}
		}
		result = res
		return nil
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return result, nil
}
