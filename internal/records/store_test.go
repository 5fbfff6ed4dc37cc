package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"ridelog/internal/core"
)

type fakePersister struct {
	loaded  []core.Record
	loadErr error
	saveErr error
	saved   [][]core.Record
}

func (f *fakePersister) LoadAll(ctx context.Context) ([]core.Record, error) {
	return f.loaded, f.loadErr
}

func (f *fakePersister) SaveAll(ctx context.Context, records []core.Record) error {
	f.saved = append(f.saved, records)
	return f.saveErr
}

func recordFor(id, dateKey string) core.Record {
	day, _ := core.ParseDateKey(dateKey)
	return core.Record{ID: id, Date: day, CreatedAt: time.Now()}
}

func TestNewStoreLoadsAndSorts(t *testing.T) {
	p := &fakePersister{loaded: []core.Record{
		recordFor("old", "2024-01-05"),
		recordFor("new", "2024-03-01"),
	}}
	s := NewStore(context.Background(), p)

	all := s.All()
	if len(all) != 2 {
		t.Fatalf("loaded: got %d", len(all))
	}
	if all[0].ID != "new" || all[1].ID != "old" {
		t.Fatalf("order: %s, %s", all[0].ID, all[1].ID)
	}
}

func TestNewStoreLoadFailureStartsEmpty(t *testing.T) {
	p := &fakePersister{loadErr: errors.New("disk gone")}
	s := NewStore(context.Background(), p)
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}

func TestAddPersistsSortedSnapshot(t *testing.T) {
	p := &fakePersister{}
	s := NewStore(context.Background(), p)

	s.Add(context.Background(), recordFor("a", "2024-03-01"))
	s.Add(context.Background(), recordFor("b", "2024-03-10"))

	if len(p.saved) != 2 {
		t.Fatalf("saves: got %d", len(p.saved))
	}
	last := p.saved[1]
	if last[0].ID != "b" || last[1].ID != "a" {
		t.Fatalf("persisted order: %s, %s", last[0].ID, last[1].ID)
	}
}

func TestSaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	p := &fakePersister{saveErr: errors.New("readonly fs")}
	s := NewStore(context.Background(), p)

	s.Add(context.Background(), recordFor("a", "2024-03-01"))
	if s.Len() != 1 {
		t.Fatalf("record lost on save failure")
	}
}

func TestDelete(t *testing.T) {
	s := NewStore(context.Background(), nil)
	s.Add(context.Background(), recordFor("a", "2024-03-01"))
	s.Add(context.Background(), recordFor("b", "2024-03-02"))

	if err := s.Delete(context.Background(), "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Get("a"); ok {
		t.Fatalf("deleted record still present")
	}
	if err := s.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("len: got %d", s.Len())
	}
}

func TestReplaceAll(t *testing.T) {
	p := &fakePersister{}
	s := NewStore(context.Background(), p)
	s.Add(context.Background(), recordFor("stale", "2024-01-01"))

	s.ReplaceAll(context.Background(), []core.Record{
		recordFor("r1", "2024-03-01"),
		recordFor("r2", "2024-03-05"),
	})

	all := s.All()
	if len(all) != 2 || all[0].ID != "r2" {
		t.Fatalf("replace result: %+v", all)
	}
	if _, ok := s.Get("stale"); ok {
		t.Fatalf("stale record survived replace")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	s := NewStore(context.Background(), nil)
	s.Add(context.Background(), recordFor("a", "2024-03-01"))

	all := s.All()
	all[0].ID = "mutated"
	if got, _ := s.Get("a"); got.ID != "a" {
		t.Fatalf("caller mutation leaked into store")
	}
}
