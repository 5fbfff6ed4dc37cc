// Package worker pushes locally created records to the remote sheet as
// sync messages arrive from the queue.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"ridelog/internal/amqp"
	"ridelog/internal/core"
	syncports "ridelog/internal/sync"
)

// RecordLookup resolves a record ID against local storage. The worker
// runs in its own process, so the lookup reads the shared database rather
// than any in-memory snapshot.
type RecordLookup interface {
	GetByID(ctx context.Context, id string) (core.Record, bool, error)
}

// SyncWorker handles synchronization of records to the remote sheet.
type SyncWorker struct {
	lookup RecordLookup
	pusher syncports.RecordPusher
}

func NewSyncWorker(lookup RecordLookup, pusher syncports.RecordPusher) *SyncWorker {
	return &SyncWorker{
		lookup: lookup,
		pusher: pusher,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP. A
// record missing locally was deleted after the message was queued; that is
// not an error, the message is simply dropped.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	rec, ok, err := w.lookup.GetByID(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("look up record %s: %w", msg.ID, err)
	}
	if !ok {
		slog.WarnContext(ctx, "Record no longer exists locally, dropping sync message",
			"id", msg.ID)
		return nil
	}

	if err := w.pusher.Push(ctx, rec); err != nil {
		return fmt.Errorf("push record to remote: %w", err)
	}

	slog.InfoContext(ctx, "Successfully synced record",
		"id", rec.ID,
		"date", rec.DateKey(),
		"total_income", rec.TotalIncome)

	return nil
}

// StartupSyncCheck pushes every local record that predates the remote's
// newest entry. It recovers from missed queue messages or worker downtime:
// the remote is append-only, so re-pushing is the safe direction.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context, local []core.Record, puller syncports.RecordPuller) error {
	if puller == nil {
		return nil
	}

	remote, err := puller.Pull(ctx)
	if err != nil {
		return fmt.Errorf("pull remote for startup check: %w", err)
	}

	known := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		known[r.ID] = struct{}{}
	}

	successCount := 0
	errorCount := 0
	for _, rec := range local {
		if _, ok := known[rec.ID]; ok {
			continue
		}
		if err := w.pusher.Push(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to push record during startup",
				"id", rec.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	if successCount+errorCount == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"pushed", successCount,
		"errors", errorCount)

	return nil
}
