package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"ridelog/internal/amqp"
	"ridelog/internal/core"
	"ridelog/internal/sync/memory"
)

type fakeLookup map[string]core.Record

func (f fakeLookup) GetByID(_ context.Context, id string) (core.Record, bool, error) {
	r, ok := f[id]
	return r, ok, nil
}

type failingLookup struct{}

func (failingLookup) GetByID(context.Context, string) (core.Record, bool, error) {
	return core.Record{}, false, errors.New("database is locked")
}

type failingPusher struct{}

func (failingPusher) Push(context.Context, core.Record) error {
	return errors.New("remote unavailable")
}

func testRecord(id, dateKey string) core.Record {
	day, _ := core.ParseDateKey(dateKey)
	return core.Record{ID: id, Date: day, TotalIncome: 100, CreatedAt: time.Now()}
}

func TestHandleSyncMessagePushes(t *testing.T) {
	remote := memory.New(nil)
	rec := testRecord("r1", "2024-03-14")
	w := NewSyncWorker(fakeLookup{"r1": rec}, remote)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewRecordSyncMessage("r1")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if remote.Len() != 1 {
		t.Fatalf("remote: got %d", remote.Len())
	}
}

func TestHandleSyncMessageDropsDeletedRecord(t *testing.T) {
	remote := memory.New(nil)
	w := NewSyncWorker(fakeLookup{}, remote)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewRecordSyncMessage("gone")); err != nil {
		t.Fatalf("deleted record should not error: %v", err)
	}
	if remote.Len() != 0 {
		t.Fatalf("nothing should be pushed")
	}
}

func TestHandleSyncMessagePushFailure(t *testing.T) {
	rec := testRecord("r1", "2024-03-14")
	w := NewSyncWorker(fakeLookup{"r1": rec}, failingPusher{})

	if err := w.HandleSyncMessage(context.Background(), amqp.NewRecordSyncMessage("r1")); err == nil {
		t.Fatalf("push failure must propagate for requeue")
	}
}

func TestHandleSyncMessageLookupFailure(t *testing.T) {
	remote := memory.New(nil)
	w := NewSyncWorker(failingLookup{}, remote)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewRecordSyncMessage("r1")); err == nil {
		t.Fatalf("lookup failure must propagate for requeue")
	}
}

func TestStartupSyncCheckPushesMissing(t *testing.T) {
	onRemote := testRecord("synced", "2024-03-10")
	remote := memory.New([]core.Record{onRemote})
	w := NewSyncWorker(fakeLookup{}, remote)

	local := []core.Record{
		onRemote,
		testRecord("local-only", "2024-03-12"),
	}
	if err := w.StartupSyncCheck(context.Background(), local, remote); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if remote.Len() != 2 {
		t.Fatalf("remote after startup: got %d want 2", remote.Len())
	}
}
