package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/jobsentry/jobsentry/internal/poller"
)

// Scheduler owns the main loop: ticks on an interval and runs each source
// poller sequentially. Sources never run concurrently; the ledger's
// uniqueness constraint, not the scheduler, is what guards against
// double-posting if two processes ever overlap.
type Scheduler struct {
	pollers  []*poller.SourcePoller
	interval time.Duration
	runOnce  bool
	logger   *slog.Logger
}

// NewScheduler creates a scheduler cycling all sources at the given
// interval. With runOnce set, Run performs a single cycle and returns.
func NewScheduler(pollers []*poller.SourcePoller, interval time.Duration, runOnce bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pollers:  pollers,
		interval: interval,
		runOnce:  runOnce,
		logger:   logger,
	}
}

// Run starts the cycle loop. It runs one immediate cycle, then ticks on the
// configured interval. It returns nil when ctx is cancelled (graceful
// shutdown) or after the first cycle in run-once mode.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"sources", len(s.pollers),
		"run_once", s.runOnce,
	)

	s.runCycle(ctx)
	if s.runOnce {
		s.logger.Info("run-once cycle complete")
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.runCycle(ctx)
		}
	}
}

// runCycle polls each source in order with a small pause between them. One
// source's failure never aborts the rest of the cycle.
func (s *Scheduler) runCycle(ctx context.Context) {
	total := poller.CycleStats{Source: "all"}

	for i, p := range s.pollers {
		if ctx.Err() != nil {
			return
		}

		stats, err := p.Poll(ctx)
		if err != nil {
			s.logger.Warn("poll failed",
				"source", p.Name,
				"error", err,
			)
		}
		total.Add(stats)

		// Small sleep between sources to be polite, except after the last one.
		if i < len(s.pollers)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(1 * time.Second):
			}
		}
	}

	s.logger.Info("cycle complete",
		"fetched", total.Fetched,
		"rejected", total.Rejected,
		"duplicates", total.Duplicates,
		"failed", total.Failed,
		"posted", total.Posted,
	)
}
