// Package run orchestrates one collection cycle across all configured
// sources and drives the scheduled loop.
package run

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okaneo/jobscout/internal/dedup"
	"github.com/okaneo/jobscout/internal/fetch"
	"github.com/okaneo/jobscout/internal/model"
	"github.com/okaneo/jobscout/internal/source"
)

// Phase is the stage a run is currently in. Phases always advance in order;
// a run never moves backwards.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseFetching
	PhaseAggregating
	PhaseDeduping
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseFetching:
		return "fetching"
	case PhaseAggregating:
		return "aggregating"
	case PhaseDeduping:
		return "deduping"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// SourceFailure records one source that could not contribute to the run.
type SourceFailure struct {
	Source string
	Err    error
}

// Result summarizes one completed run.
type Result struct {
	RunID     string
	Started   time.Time
	Duration  time.Duration
	New       []model.Posting
	Seen      []model.Posting
	Dropped   int             // invalid records discarded at extraction
	Truncated []string        // sources that hit their record cap
	Failures  []SourceFailure // sources excluded from the aggregate
}

// The orchestrator depends on behavior, not concrete types, so tests can
// substitute fakes for the network and the store.
type fetcher interface {
	Fetch(ctx context.Context, desc source.Descriptor, strat source.Strategy) (fetch.RawResult, error)
}

type extractor interface {
	Extract(ctx context.Context, raw fetch.RawResult, desc source.Descriptor, strat source.Strategy) ([]model.Posting, int, error)
}

type classifier interface {
	Classify(ctx context.Context, postings []model.Posting, now time.Time) (dedup.Outcome, error)
}

type limiter interface {
	Wait(ctx context.Context, platform string) error
}

// Options carries the orchestrator's dependencies and tuning knobs.
type Options struct {
	Sources     []source.Descriptor
	Registry    *source.Registry
	Fetcher     fetcher
	Extractor   extractor
	Classifier  classifier
	Normalizer  model.Normalizer
	Limiter     limiter
	Concurrency int           // max sources in flight; values < 1 mean 1
	MaxAge      time.Duration // drop postings older than this; 0 disables
	Logger      *slog.Logger
}

// Orchestrator executes runs. One orchestrator handles at most one run at a
// time; the scheduler enforces this in scheduled mode.
type Orchestrator struct {
	opts Options
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Orchestrator{opts: opts}
}

// sourceResult is what one source sub-pipeline hands back to the aggregator.
type sourceResult struct {
	name      string
	postings  []model.Posting
	dropped   int
	truncated bool
	err       error
}

// Execute runs one full cycle: fetch and extract every source concurrently,
// aggregate the survivors, classify them against the store, and report. The
// returned error is non-nil only for run-fatal conditions; individual source
// failures are recorded in the result instead.
func (o *Orchestrator) Execute(ctx context.Context) (Result, error) {
	res := Result{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	logger := o.opts.Logger.With("run_id", res.RunID)
	logger.Info("run phase", "phase", PhaseInit.String(), "sources", len(o.opts.Sources))

	logger.Info("run phase", "phase", PhaseFetching.String())
	results := o.collectAll(ctx, logger)

	logger.Info("run phase", "phase", PhaseAggregating.String())
	var aggregated []model.Posting
	for _, sr := range results {
		if sr.err != nil {
			logger.Error("source failed", "source", sr.name, "error", sr.err)
			res.Failures = append(res.Failures, SourceFailure{Source: sr.name, Err: sr.err})
			continue
		}
		aggregated = append(aggregated, sr.postings...)
		res.Dropped += sr.dropped
		if sr.truncated {
			res.Truncated = append(res.Truncated, sr.name)
		}
	}

	logger.Info("run phase", "phase", PhaseDeduping.String(), "postings", len(aggregated))
	outcome, err := o.opts.Classifier.Classify(ctx, aggregated, time.Now())
	if err != nil {
		return Result{}, err
	}
	res.New = outcome.New
	res.Seen = outcome.Seen

	res.Duration = time.Since(res.Started)
	logger.Info("run phase", "phase", PhaseDone.String(),
		"new", len(res.New),
		"seen", len(res.Seen),
		"dropped", res.Dropped,
		"failed_sources", len(res.Failures),
		"duration", res.Duration.String(),
	)
	return res, nil
}

// collectAll runs the per-source sub-pipelines under the concurrency limit.
// Results come back in source order.
func (o *Orchestrator) collectAll(ctx context.Context, logger *slog.Logger) []sourceResult {
	results := make([]sourceResult, len(o.opts.Sources))
	sem := make(chan struct{}, o.opts.Concurrency)
	var wg sync.WaitGroup

	for i, desc := range o.opts.Sources {
		wg.Add(1)
		go func(i int, desc source.Descriptor) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = o.collect(ctx, desc, logger)
		}(i, desc)
	}
	wg.Wait()
	return results
}

// collect runs fetch → extract → normalize for one source. Normalization
// failures are non-fatal: the raw postings pass through unchanged.
func (o *Orchestrator) collect(ctx context.Context, desc source.Descriptor, logger *slog.Logger) sourceResult {
	sr := sourceResult{name: desc.Name}

	strat, err := o.opts.Registry.Resolve(desc)
	if err != nil {
		sr.err = err
		return sr
	}

	if err := o.opts.Limiter.Wait(ctx, desc.Platform); err != nil {
		sr.err = err
		return sr
	}

	raw, err := o.opts.Fetcher.Fetch(ctx, desc, strat)
	if err != nil {
		sr.err = err
		return sr
	}
	sr.truncated = raw.Truncated

	postings, dropped, err := o.opts.Extractor.Extract(ctx, raw, desc, strat)
	if err != nil {
		sr.err = err
		return sr
	}
	sr.dropped = dropped

	normalized, err := o.opts.Normalizer.Normalize(ctx, postings)
	if err != nil {
		logger.Warn("normalization failed, using raw postings", "source", desc.Name, "error", err)
		normalized = postings
	}

	sr.postings = o.filterByAge(normalized)
	logger.Info("collected source",
		"source", desc.Name,
		"platform", desc.Platform,
		"postings", len(sr.postings),
		"dropped", sr.dropped,
		"truncated", sr.truncated,
	)
	return sr
}

// filterByAge drops postings older than MaxAge. Postings without a date are
// kept; absence of evidence is not staleness.
func (o *Orchestrator) filterByAge(postings []model.Posting) []model.Posting {
	if o.opts.MaxAge <= 0 {
		return postings
	}
	cutoff := time.Now().Add(-o.opts.MaxAge)
	kept := postings[:0]
	for _, p := range postings {
		if p.PostedAt == nil || !p.PostedAt.Before(cutoff) {
			kept = append(kept, p)
		}
	}
	return kept
}
