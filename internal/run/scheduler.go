package run

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the orchestrator on a fixed interval. SkipIfStillRunning
// guarantees at most one run is in flight; a tick that fires while a run is
// active is skipped, not queued.
type Scheduler struct {
	orch     *Orchestrator
	interval time.Duration
	publish  func(Result)
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that executes a run every interval and
// hands each result to publish.
func NewScheduler(orch *Orchestrator, interval time.Duration, publish func(Result), logger *slog.Logger) *Scheduler {
	return &Scheduler{
		orch:     orch,
		interval: interval,
		publish:  publish,
		logger:   logger,
	}
}

// Run starts the loop: one immediate run, then one per interval. It blocks
// until ctx is cancelled, then waits for any in-flight run to finish before
// returning. Run-fatal errors are logged; the loop keeps going so one bad
// cycle does not take the daemon down.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	cycle := func() {
		res, err := s.orch.Execute(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("run failed", "error", err)
			return
		}
		s.publish(res)
	}

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), cycle); err != nil {
		return fmt.Errorf("registering schedule: %w", err)
	}

	// First run happens immediately; the cron entry covers the rest.
	cycle()
	c.Start()

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")

	// Stop returns a context that is done once in-flight jobs complete.
	<-c.Stop().Done()
	return nil
}
