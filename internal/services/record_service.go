// Package services orchestrates record operations across the local store,
// the remote sheet and the AMQP sync queue.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ridelog/internal/core"
	"ridelog/internal/records"
	syncports "ridelog/internal/sync"
)

var (
	// ErrPushPending rejects a remote pull while locally created records
	// have not reached the remote yet; pulling would silently drop them.
	ErrPushPending = errors.New("records pending push, pull refused")

	// ErrNoRemote is returned when no sync backend is configured.
	ErrNoRemote = errors.New("no remote sync backend configured")
)

// SyncPublisher enqueues a push for one record.
type SyncPublisher interface {
	PublishRecordSync(ctx context.Context, id string) error
}

// RecordService is the application service behind the HTTP API. It owns the
// write path (create, delete, pull) and derives every read model from one
// wholesale aggregation pass over the store.
type RecordService struct {
	store     *records.Store
	remote    syncports.Backend
	publisher SyncPublisher
	now       func() time.Time

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewRecordService(store *records.Store, remote syncports.Backend, publisher SyncPublisher, now func() time.Time) *RecordService {
	if now == nil {
		now = time.Now
	}
	return &RecordService{
		store:     store,
		remote:    remote,
		publisher: publisher,
		now:       now,
		pending:   make(map[string]struct{}),
	}
}

// Create validates the draft, stores the record and hands it to the sync
// path. Sync failures are logged, never surfaced: the record is safe
// locally and the remote catches up later.
func (s *RecordService) Create(ctx context.Context, draft core.Draft) (core.Record, error) {
	rec, err := core.NewRecord(draft, s.now())
	if err != nil {
		return core.Record{}, err
	}

	s.store.Add(ctx, rec)
	s.markPending(rec.ID)

	switch {
	case s.publisher != nil:
		if err := s.publisher.PublishRecordSync(ctx, rec.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"id", rec.ID, "error", err)
		}
	case s.remote != nil:
		if err := s.remote.Push(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to push record to remote",
				"id", rec.ID, "error", err)
		} else {
			s.ConfirmPushed(rec.ID)
		}
	default:
		s.ConfirmPushed(rec.ID)
	}

	return rec, nil
}

// Delete removes a record locally. The remote keeps its copy until the
// next manual reconciliation; the sheet is append-only from this side.
func (s *RecordService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.ConfirmPushed(id)
	return nil
}

// Get returns one record by id.
func (s *RecordService) Get(id string) (core.Record, bool) {
	return s.store.Get(id)
}

// Records returns the full collection, newest first.
func (s *RecordService) Records() []core.Record {
	return s.store.All()
}

// PullRemote replaces the local collection with the remote one. It refuses
// to pull while locally created records are still missing from the remote,
// so a pull can never erase work the push path has not landed yet.
func (s *RecordService) PullRemote(ctx context.Context) (int, error) {
	if s.remote == nil {
		return 0, ErrNoRemote
	}

	pulled, err := s.remote.Pull(ctx)
	if err != nil {
		return 0, fmt.Errorf("pull remote records: %w", err)
	}

	if missing := s.missingFromRemote(pulled); len(missing) > 0 {
		slog.WarnContext(ctx, "Refusing pull, local records not yet on remote",
			"missing", len(missing))
		return 0, ErrPushPending
	}

	s.store.ReplaceAll(ctx, pulled)
	s.clearPending()

	slog.InfoContext(ctx, "Pulled records from remote", "count", len(pulled))
	return len(pulled), nil
}

// ConfirmPushed marks one record as landed on the remote, unblocking pulls.
func (s *RecordService) ConfirmPushed(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// PendingPushes reports how many created records still await a push.
func (s *RecordService) PendingPushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *RecordService) markPending(id string) {
	s.mu.Lock()
	s.pending[id] = struct{}{}
	s.mu.Unlock()
}

func (s *RecordService) clearPending() {
	s.mu.Lock()
	s.pending = make(map[string]struct{})
	s.mu.Unlock()
}

func (s *RecordService) missingFromRemote(pulled []core.Record) []string {
	remote := make(map[string]struct{}, len(pulled))
	for _, r := range pulled {
		remote[r.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var missing []string
	for id := range s.pending {
		if _, ok := remote[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Snapshot aggregates the whole collection as of now.
func (s *RecordService) Snapshot() core.Snapshot {
	return core.Aggregate(s.store.All(), s.now())
}

// Week computes the weekly window around the anchor.
func (s *RecordService) Week(anchor time.Time) core.WeekStats {
	return core.WeekOf(s.Snapshot(), anchor, s.now())
}

// Month computes the month-detail view for a YYYY-MM key.
func (s *RecordService) Month(key string) core.MonthStats {
	return core.MonthOf(s.Snapshot(), key)
}

// Year computes the annual view.
func (s *RecordService) Year(year int) core.YearStats {
	return core.YearOf(s.Snapshot(), year, s.now())
}

// Recent selects the seven days before today.
func (s *RecordService) Recent() core.RecentStats {
	return core.RecentWindow(s.store.All(), s.now())
}

// Now exposes the injected clock to the presentation layer.
func (s *RecordService) Now() time.Time {
	return s.now()
}
