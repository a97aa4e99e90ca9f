package uistate

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrUnknownModal is returned when a modal name is not registered on the store.
var ErrUnknownModal = errors.New("uistate: unknown modal")

// Modal names a dialog an entity view can open.
type Modal string

// Store holds the selection and modal flags for one entity.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Setters take effect immediately; there is no batching.
type Store[T any] struct {
	mu       sync.RWMutex
	selected *T
	modals   map[Modal]bool
	order    []Modal
}

// NewStore creates a store that accepts exactly the given modal names.
func NewStore[T any](modals ...Modal) *Store[T] {
	s := &Store[T]{modals: make(map[Modal]bool, len(modals))}
	for _, m := range modals {
		if _, dup := s.modals[m]; dup {
			continue
		}
		s.modals[m] = false
		s.order = append(s.order, m)
	}
	return s
}

// Select sets the selected item.
func (s *Store[T]) Select(v T) {
	s.mu.Lock()
	s.selected = &v
	s.mu.Unlock()
}

// Selected returns the selected item and whether one is set.
func (s *Store[T]) Selected() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		var zero T
		return zero, false
	}
	return *s.selected, true
}

// Clear drops the selection.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

// Open raises the named modal.
func (s *Store[T]) Open(m Modal) error {
	return s.set(m, true)
}

// Close lowers the named modal.
func (s *Store[T]) Close(m Modal) error {
	return s.set(m, false)
}

// IsOpen reports whether the named modal is open. Unknown names are closed.
func (s *Store[T]) IsOpen(m Modal) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modals[m]
}

// CloseAll lowers every modal. The selection is kept.
func (s *Store[T]) CloseAll() {
	s.mu.Lock()
	for m := range s.modals {
		s.modals[m] = false
	}
	s.mu.Unlock()
}

// OpenModals lists the open modals in registration order.
func (s *Store[T]) OpenModals() []Modal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var open []Modal
	for _, m := range s.order {
		if s.modals[m] {
			open = append(open, m)
		}
	}
	return open
}

// Modals lists the registered modal names.
func (s *Store[T]) Modals() []Modal {
	return slices.Clone(s.order)
}

func (s *Store[T]) set(m Modal, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.modals[m]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModal, m)
	}
	s.modals[m] = open
	return nil
}
