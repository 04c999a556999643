package collector

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/jobtrend/internal/model"
)

// Coordinator runs every registered collector in order and merges their
// records into one aggregate: fetch all → concatenate → snapshot → record run.
type Coordinator struct {
	collectors []model.Collector
	snapshot   model.SnapshotWriter
	recorder   model.RunRecorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewCoordinator wires a coordinator. snapshot may be nil to skip persistence
// and recorder may be nil to skip run history.
func NewCoordinator(
	collectors []model.Collector,
	snapshot model.SnapshotWriter,
	recorder model.RunRecorder,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		collectors: collectors,
		snapshot:   snapshot,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// Sources returns the registered collector names in registration order.
func (c *Coordinator) Sources() []string {
	names := make([]string, 0, len(c.collectors))
	for _, col := range c.collectors {
		names = append(names, col.Name())
	}
	return names
}

// RunAll collects from every source sequentially and returns the
// concatenation in registration order, then within-source order. Nothing is
// deduplicated. A non-empty aggregate replaces the snapshot; an empty one
// leaves the previous snapshot untouched.
func (c *Coordinator) RunAll(ctx context.Context) []model.JobRecord {
	run := model.RunRecord{StartedAt: c.now()}

	all := []model.JobRecord{}
	for _, col := range c.collectors {
		jobs := col.CollectJobs(ctx)
		for _, j := range jobs {
			if j.Source == "" {
				j.Source = col.Name()
			}
			all = append(all, j)
		}
		run.Sources = append(run.Sources, model.SourceCount{Source: col.Name(), Count: len(jobs)})
		c.logger.Info("source collected", "source", col.Name(), "count", len(jobs))
	}
	run.Total = len(all)

	switch {
	case len(all) == 0:
		c.logger.Warn("no jobs scraped from any source")
	case ctx.Err() != nil:
		c.logger.Warn("collection interrupted, snapshot not written", "count", len(all), "error", ctx.Err())
	case c.snapshot != nil:
		if err := c.snapshot.Write(all); err != nil {
			c.logger.Error("failed to save snapshot", "count", len(all), "error", err)
		} else {
			run.SnapshotWritten = true
		}
	}

	run.FinishedAt = c.now()
	c.record(run)

	c.logger.Info("collection finished",
		"total", run.Total,
		"sources", len(c.collectors),
		"duration", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
	)
	return all
}

// record stores the run summary. It uses a fresh context so a run cut short
// by shutdown is still logged.
func (c *Coordinator) record(run model.RunRecord) {
	if c.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.recorder.RecordRun(ctx, run); err != nil {
		c.logger.Error("failed to record run", "error", err)
	}
}
