// Package store provides SeenStore implementations backed by SQLite,
// Postgres, Redis, or process memory.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/okaneo/jobscout/internal/model"
)

// MemoryStore keeps seen records in process memory. Nothing survives a
// restart, so every run starts with empty history. Used for dry runs and
// tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]model.SeenRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]model.SeenRecord)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (model.SeenRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *MemoryStore) Upsert(_ context.Context, key string, snapshot model.Posting, seenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		rec = model.SeenRecord{Key: key, FirstSeen: seenAt}
	}
	rec.LastSeen = seenAt
	rec.Snapshot = snapshot
	s.records[key] = rec
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

func (s *MemoryStore) Close() error { return nil }
