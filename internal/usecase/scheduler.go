package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsBriefing/internal/config"
	"NewsBriefing/internal/logging"
	"NewsBriefing/internal/ports"
)

// Scheduler wires the cron driver with the daily ops use case.
type Scheduler struct {
	driver ports.Scheduler
	ops    *DailyOps
	cfg    config.Config
	opts   DailyOpsOptions
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring daily runs.
func NewScheduler(driver ports.Scheduler, ops *DailyOps, cfg config.Config, opts DailyOpsOptions, log *slog.Logger) *Scheduler {
	if log == nil {
		log = logging.Discard()
	}
	return &Scheduler{driver: driver, ops: ops, cfg: cfg, opts: opts, logger: log}
}

// Start registers the daily run with the provided scheduler. Each trigger
// reports on the day it fired.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.ops == nil {
		return nil
	}

	job := func(trigger time.Time) {
		opts := s.opts
		opts.Run.ReportDay = trigger
		if _, err := s.ops.Execute(ctx, s.cfg, opts); err != nil {
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
