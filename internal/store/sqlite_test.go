package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/okaneo/jobscout/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePosting() model.Posting {
	posted := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return model.Posting{
		Company:     "Acme",
		Title:       "Backend Engineer",
		Location:    "Remote, US",
		URL:         "https://acme.example/jobs/42",
		Description: "Build services.",
		PostedAt:    &posted,
		Source:      "greenhouse",
	}
}

func TestSQLiteGetMissingKey(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.Get(context.Background(), "url|https://nowhere.example")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("expected unknown key to be absent")
	}
}

func TestSQLiteUpsertThenGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := samplePosting()
	seenAt := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)

	if err := s.Upsert(ctx, "url|https://acme.example/jobs/42", p, seenAt); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rec, ok, err := s.Get(ctx, "url|https://acme.example/jobs/42")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("expected record to exist after upsert")
	}
	if !rec.FirstSeen.Equal(seenAt) {
		t.Errorf("FirstSeen = %v, want %v", rec.FirstSeen, seenAt)
	}
	if !rec.LastSeen.Equal(seenAt) {
		t.Errorf("LastSeen = %v, want %v", rec.LastSeen, seenAt)
	}
	if rec.Snapshot.Company != p.Company || rec.Snapshot.Title != p.Title {
		t.Errorf("snapshot = %+v, want %+v", rec.Snapshot, p)
	}
	if rec.Snapshot.PostedAt == nil || !rec.Snapshot.PostedAt.Equal(*p.PostedAt) {
		t.Errorf("PostedAt = %v, want %v", rec.Snapshot.PostedAt, p.PostedAt)
	}
}

func TestSQLiteUpsertPreservesFirstSeen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := samplePosting()
	first := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	key := "url|https://acme.example/jobs/42"
	if err := s.Upsert(ctx, key, p, first); err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}

	p.Title = "Senior Backend Engineer"
	if err := s.Upsert(ctx, key, p, later); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	rec, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, %v", rec, ok, err)
	}
	if !rec.FirstSeen.Equal(first) {
		t.Errorf("FirstSeen = %v, want original %v", rec.FirstSeen, first)
	}
	if !rec.LastSeen.Equal(later) {
		t.Errorf("LastSeen = %v, want refreshed %v", rec.LastSeen, later)
	}
	if rec.Snapshot.Title != "Senior Backend Engineer" {
		t.Errorf("Title = %q, want refreshed snapshot", rec.Snapshot.Title)
	}
}

func TestSQLiteNilPostedAtRoundTrips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := samplePosting()
	p.PostedAt = nil

	if err := s.Upsert(ctx, "cti|engineer|acme|remote", p, time.Now()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rec, ok, err := s.Get(ctx, "cti|engineer|acme|remote")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, %v", rec, ok, err)
	}
	if rec.Snapshot.PostedAt != nil {
		t.Errorf("PostedAt = %v, want nil", rec.Snapshot.PostedAt)
	}
}

func TestSQLiteCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}

	p := samplePosting()
	now := time.Now()
	for _, key := range []string{"k1", "k2", "k1"} {
		if err := s.Upsert(ctx, key, p, now); err != nil {
			t.Fatalf("Upsert(%s) error = %v", key, err)
		}
	}

	n, err = s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2 distinct keys", n)
	}
}
