// Package workspace keeps per-browser page state on the server.
//
// Each browser carries a session id in a signed cookie; page state for that
// id lives in a Store until it has been idle longer than the sweep age.
package workspace

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value    *T
	lastSeen time.Time
}

// Store holds one *T per session id.
type Store[T any] struct {
	mu    sync.Mutex
	items map[string]*entry[T]
	newFn func() *T
	now   func() time.Time
}

// NewStore creates a store that builds missing values with newFn.
func NewStore[T any](newFn func() *T) *Store[T] {
	return &Store[T]{
		items: make(map[string]*entry[T]),
		newFn: newFn,
		now:   time.Now,
	}
}

// Get returns the value for id, creating it on first use.
func (s *Store[T]) Get(id string) *T {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		e = &entry[T]{value: s.newFn()}
		s.items[id] = e
	}
	e.lastSeen = s.now()
	return e.value
}

// Delete drops the value for id.
func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// Len returns the number of sessions held.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep removes values idle for longer than maxIdle and returns how many
// were removed.
func (s *Store[T]) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, e := range s.items {
		if e.lastSeen.Before(cutoff) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// Sweeper is anything with idle state to evict.
type Sweeper interface {
	Sweep(maxIdle time.Duration) int
}
