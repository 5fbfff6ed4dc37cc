// Package records holds the canonical in-memory record collection and its
// best-effort persistence. Every read returns a copy; callers never observe
// the store's internal slice.
package records

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"ridelog/internal/core"
)

// ErrNotFound is returned by Delete when no record carries the given id.
var ErrNotFound = errors.New("record not found")

// Persister saves and loads the full collection. The store treats
// persistence as best-effort: a failed load starts the store empty and a
// failed save keeps the in-memory state authoritative.
type Persister interface {
	LoadAll(ctx context.Context) ([]core.Record, error)
	SaveAll(ctx context.Context, records []core.Record) error
}

type Store struct {
	mu        sync.RWMutex
	records   []core.Record
	persister Persister
}

// NewStore builds a store backed by the given persister and loads the
// existing collection. A nil persister yields a purely in-memory store.
func NewStore(ctx context.Context, persister Persister) *Store {
	s := &Store{persister: persister}
	if persister == nil {
		return s
	}

	loaded, err := persister.LoadAll(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load persisted records, starting empty", "error", err)
		return s
	}
	core.SortByDateDesc(loaded)
	s.records = loaded
	return s
}

// All returns a copy of the collection, newest first.
func (s *Store) All() []core.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len reports the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (core.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return core.Record{}, false
}

// Add inserts a record and persists the new collection.
func (s *Store) Add(ctx context.Context, r core.Record) {
	s.mu.Lock()
	s.records = append(s.records, r)
	core.SortByDateDesc(s.records)
	snapshot := s.copyLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

// Delete removes the record with the given id and persists the new
// collection. It reports ErrNotFound when the id is unknown.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	for i, r := range s.records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	snapshot := s.copyLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return nil
}

// ReplaceAll swaps in a whole new collection, as after a remote pull, and
// persists it.
func (s *Store) ReplaceAll(ctx context.Context, records []core.Record) {
	sorted := make([]core.Record, len(records))
	copy(sorted, records)
	core.SortByDateDesc(sorted)

	s.mu.Lock()
	s.records = sorted
	snapshot := s.copyLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

func (s *Store) copyLocked() []core.Record {
	out := make([]core.Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) persist(ctx context.Context, snapshot []core.Record) {
	if s.persister == nil {
		return
	}
	if err := s.persister.SaveAll(ctx, snapshot); err != nil {
		slog.ErrorContext(ctx, "Failed to persist records", "error", err, "count", len(snapshot))
	}
}
