package run

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okaneo/jobscout/internal/fetch"
	"github.com/okaneo/jobscout/internal/source"
)

func schedulerOrchestrator() *Orchestrator {
	return NewOrchestrator(Options{
		Sources:  []source.Descriptor{{Name: "alpha", Platform: "stub"}},
		Registry: stubRegistry(),
		Fetcher: &fakeFetcher{results: map[string]fetch.RawResult{
			"alpha": rawRecords("a1"),
		}},
		Extractor:   fakeExtractor{},
		Classifier:  &passClassifier{},
		Normalizer:  passNormalizer{},
		Limiter:     nopLimiter{},
		Concurrency: 1,
		Logger:      testLogger(),
	})
}

func TestSchedulerRunsImmediatelyAndPublishes(t *testing.T) {
	var published atomic.Int32
	sched := NewScheduler(schedulerOrchestrator(), time.Hour, func(res Result) {
		published.Add(1)
		assert.Len(t, res.New, 1)
	}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	// The first cycle runs before any tick; an hour-long interval means
	// exactly one publish by the time we cancel.
	require.Eventually(t, func() bool { return published.Load() == 1 },
		2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	assert.Equal(t, int32(1), published.Load())
}

func TestSchedulerStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sched := NewScheduler(schedulerOrchestrator(), time.Hour, func(Result) {}, testLogger())

	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return on an already-cancelled context")
	}
}
