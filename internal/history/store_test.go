package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/iabetor/stream2pod/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return NewStore(db)
}

func TestStore_RecordAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 19, 8, 0, 0, 0, time.UTC)

	records := []Record{
		{ID: "r1", UserID: "alice", Kind: KindPodcast, Source: "https://example.com/a", Status: StatusOK, Lines: 12, Bytes: 2048, ElapsedMS: 1500, CreatedAt: base},
		{ID: "r2", UserID: "bob", Kind: KindAnswer, Source: "why?", Status: StatusError, Reason: "generation_error", CreatedAt: base.Add(time.Minute)},
		{ID: "r3", UserID: "alice", Kind: KindScript, Source: "https://example.com/b", Status: StatusOK, Lines: 8, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range records {
		if err := s.Record(ctx, r); err != nil {
			t.Fatalf("Record(%s) failed: %v", r.ID, err)
		}
	}

	all, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].ID != "r3" || all[2].ID != "r1" {
		t.Errorf("records should be newest first: %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
	}

	alice, err := s.List(ctx, "alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(alice) != 2 {
		t.Fatalf("expected 2 records for alice, got %d", len(alice))
	}
	got := alice[1]
	if got.Kind != KindPodcast || got.Source != "https://example.com/a" || got.Lines != 12 || got.Bytes != 2048 || got.ElapsedMS != 1500 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, base)
	}

	bob, _ := s.List(ctx, "bob", 10)
	if len(bob) != 1 || bob[0].Reason != "generation_error" || bob[0].Status != StatusError {
		t.Errorf("unexpected bob records: %+v", bob)
	}
}

func TestStore_ListLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Record(ctx, Record{ID: fmt.Sprintf("r%d", i), Kind: KindPodcast, Status: StatusOK}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.List(ctx, "", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 records, got %d", len(got))
	}
}

func TestStore_ListEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.List(context.Background(), "nobody", 5)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestStore_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := Record{ID: "dup", Kind: KindPodcast, Status: StatusOK}
	if err := s.Record(ctx, r); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, r); err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestStore_ReusedRequestID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.Record(ctx, Record{RequestID: "client-42", UserID: "alice", Kind: KindPodcast, Status: StatusOK}); err != nil {
			t.Fatalf("Record #%d failed: %v", i, err)
		}
	}

	got, err := s.List(ctx, "alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both records to be stored, got %d", len(got))
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Errorf("expected distinct generated ids, got %q and %q", got[0].ID, got[1].ID)
	}
	for _, r := range got {
		if r.RequestID != "client-42" {
			t.Errorf("RequestID = %q, want client-42", r.RequestID)
		}
	}
}
