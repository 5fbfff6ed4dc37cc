// Package memory is the in-process sheet adapter: the default backend when
// no remote endpoint is configured, and the one tests exercise.
package memory

import (
	"context"
	"sync"

	"ridelog/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.Record
}

func New(seed []core.Record) *Store {
	s := &Store{}
	s.items = append(s.items, seed...)
	return s
}

// Pull returns a copy of the held collection, newest first.
func (s *Store) Pull(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Record(nil), s.items...)
	core.SortByDateDesc(out)
	return out, nil
}

// Push appends the record.
func (s *Store) Push(_ context.Context, r core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return nil
}

// Len reports the number of pushed records, for tests.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
