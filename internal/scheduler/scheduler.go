package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/jobtrend/internal/collector"
	"github.com/amishk599/jobtrend/internal/model"
)

// Scheduler owns the daemon loop: it runs a collection immediately and then
// once per interval until the context is cancelled.
type Scheduler struct {
	runner   collector.Runner
	interval time.Duration
	logger   *slog.Logger
	onRun    func([]model.JobRecord)
}

// NewScheduler creates a scheduler that re-collects at the given interval.
func NewScheduler(runner collector.Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// OnRun registers a callback invoked with each cycle's aggregate.
func (s *Scheduler) OnRun(fn func([]model.JobRecord)) {
	s.onRun = fn
}

// Run starts the loop. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	records := s.runner.RunAll(ctx)
	s.logger.Debug("cycle complete", "count", len(records))
	if s.onRun != nil {
		s.onRun(records)
	}
}
