package store

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryUpsertPreservesFirstSeen(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	first := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	p := samplePosting()
	if err := s.Upsert(ctx, "k", p, first); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Upsert(ctx, "k", p, later); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rec, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, %v", rec, ok, err)
	}
	if !rec.FirstSeen.Equal(first) {
		t.Errorf("FirstSeen = %v, want %v", rec.FirstSeen, first)
	}
	if !rec.LastSeen.Equal(later) {
		t.Errorf("LastSeen = %v, want %v", rec.LastSeen, later)
	}
}

func TestMemoryGetMissingKey(t *testing.T) {
	s := NewMemoryStore()

	_, ok, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("expected missing key to be absent")
	}
}

func TestMemoryConcurrentUpserts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p := samplePosting()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Upsert(ctx, "shared", p, now)
			_, _, _ = s.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}
