// Package dedup classifies postings as new or previously seen by comparing
// identity keys against the persistent seen store.
package dedup

import (
	"context"
	"log/slog"
	"time"

	"github.com/okaneo/jobscout/internal/identity"
	"github.com/okaneo/jobscout/internal/model"
)

// Outcome is the result of classifying one run's postings.
type Outcome struct {
	New  []model.Posting // first ever appearance of their identity key
	Seen []model.Posting // key already present in the store before this run
}

// Engine classifies postings against a SeenStore. It is safe for reuse
// across runs but not for concurrent calls.
type Engine struct {
	store  model.SeenStore
	logger *slog.Logger
}

func NewEngine(store model.SeenStore, logger *slog.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Classify deduplicates postings within the run (first occurrence wins)
// and splits the survivors into new and seen against the store. Lookups are
// read-only; the upserts that record the survivors happen in one batch only
// after every lookup has succeeded, so an aborted run leaves no history
// behind and its postings classify as new next time. Store failures are
// fatal: a run that cannot read or write history must not report anything
// as new.
func (e *Engine) Classify(ctx context.Context, postings []model.Posting, now time.Time) (Outcome, error) {
	var out Outcome
	seenKeys := make(map[string]struct{}, len(postings))
	keys := make(map[string]model.Posting, len(postings))

	for _, p := range postings {
		key := identity.Key(p)
		if _, dup := seenKeys[key]; dup {
			continue
		}
		seenKeys[key] = struct{}{}
		keys[key] = p

		_, exists, err := e.store.Get(ctx, key)
		if err != nil {
			return Outcome{}, &model.PersistenceError{Op: "get", Err: err}
		}
		if exists {
			out.Seen = append(out.Seen, p)
		} else {
			out.New = append(out.New, p)
		}
	}

	for key, p := range keys {
		if err := e.store.Upsert(ctx, key, p, now); err != nil {
			return Outcome{}, &model.PersistenceError{Op: "upsert", Err: err}
		}
	}

	e.logger.Debug("classified postings",
		"total", len(postings),
		"unique", len(seenKeys),
		"new", len(out.New),
		"seen", len(out.Seen))
	return out, nil
}
