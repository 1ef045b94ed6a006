package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"NewsBriefing/internal/ports"
)

// CronScheduler triggers jobs on a standard five-field cron expression.
type CronScheduler struct {
	spec     string
	location *time.Location
	logger   *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler evaluating spec in loc.
func NewCronScheduler(spec string, loc *time.Location, log *slog.Logger) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{spec: spec, location: loc, logger: log}
}

// Validate reports whether spec parses as a cron expression.
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("parse cron %q: %w", spec, err)
	}
	return nil
}

// Start registers job and begins ticking. Overlapping runs are skipped.
// Cancelling ctx stops the scheduler.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	opts := []cron.Option{cron.WithLocation(c.location)}
	if c.logger != nil {
		logger := cron.VerbosePrintfLogger(slog.NewLogLogger(c.logger.Handler(), slog.LevelDebug))
		opts = append(opts, cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	} else {
		opts = append(opts, cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	}

	sched := cron.New(opts...)
	if _, err := sched.AddFunc(c.spec, func() { job(time.Now().In(c.location)) }); err != nil {
		return fmt.Errorf("parse cron %q: %w", c.spec, err)
	}
	sched.Start()
	c.cron = sched

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()

	if c.logger != nil {
		c.logger.Info("scheduler started", "cron", c.spec, "timezone", c.location.String())
	}
	return nil
}

// Next returns the next activation after t, or the zero time when stopped.
func (c *CronScheduler) Next(t time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron == nil {
		return time.Time{}
	}
	entries := c.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(t.In(c.location))
}

// Stop halts the cron loop and waits for a running job or ctx.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	sched := c.cron
	c.cron = nil
	c.mu.Unlock()

	if sched == nil {
		return nil
	}
	select {
	case <-sched.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
