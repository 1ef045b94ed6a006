package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"NewsBriefing/internal/config"
	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/health"
	"NewsBriefing/internal/logging"
	"NewsBriefing/internal/ports"
)

// Alert statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// HealthChecker probes the configured sources.
type HealthChecker interface {
	Check(ctx context.Context, cfg config.Config) health.Report
}

// DailyOpsDeps wires the daily wrapper.
type DailyOpsDeps struct {
	Pipeline *Pipeline
	Checker  HealthChecker
	Notifier ports.Notifier
	Clock    func() time.Time
	// Sleep waits between attempts; it must return early when ctx ends.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
}

// DailyOpsOptions tunes one daily execution.
type DailyOpsOptions struct {
	ConfigPath      string
	RuntimeDir      string
	MaxRetries      int
	RetryDelay      time.Duration
	SkipPrecheck    bool
	AutoDegrade     bool
	NotifyOnSuccess bool
	Run             RunOptions
}

// OptionsFromConfig fills DailyOpsOptions from the ops and alert settings.
func OptionsFromConfig(cfg config.Config, configPath string) DailyOpsOptions {
	return DailyOpsOptions{
		ConfigPath:      configPath,
		RuntimeDir:      filepath.Join(cfg.Output.Dir, "runtime_configs"),
		MaxRetries:      cfg.Ops.MaxRetries,
		RetryDelay:      cfg.Ops.RetryDelay,
		SkipPrecheck:    cfg.Ops.SkipPrecheck,
		AutoDegrade:     cfg.Ops.AutoDegrade,
		NotifyOnSuccess: cfg.Alerts.OnSuccess,
	}
}

// DailyOpsResult reports how the daily execution went.
type DailyOpsResult struct {
	Run        RunResult
	Attempts   int
	ConfigUsed string
	Precheck   *health.Report
	Removed    []config.Source
}

// DailyOps runs the pipeline the way the unattended daily job does.
type DailyOps struct {
	pipeline *Pipeline
	checker  HealthChecker
	notifier ports.Notifier
	clock    func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *slog.Logger
}

// NewDailyOps constructs the wrapper.
func NewDailyOps(deps DailyOpsDeps) *DailyOps {
	d := &DailyOps{
		pipeline: deps.Pipeline,
		checker:  deps.Checker,
		notifier: deps.Notifier,
		clock:    deps.Clock,
		sleep:    deps.Sleep,
		logger:   deps.Logger,
	}
	if d.clock == nil {
		d.clock = time.Now
	}
	if d.sleep == nil {
		d.sleep = sleepContext
	}
	if d.logger == nil {
		d.logger = logging.Discard()
	}
	return d
}

// Execute prechecks sources, swaps in a degraded config when some fail,
// then runs the pipeline up to MaxRetries+1 times. The final outcome is
// sent to the notifier; failures always, successes only when asked.
func (d *DailyOps) Execute(ctx context.Context, cfg config.Config, opts DailyOpsOptions) (DailyOpsResult, error) {
	if d.pipeline == nil {
		return DailyOpsResult{}, fmt.Errorf("daily ops has no pipeline")
	}

	result := DailyOpsResult{ConfigUsed: opts.ConfigPath}
	active := cfg

	if !opts.SkipPrecheck && d.checker != nil {
		report := d.checker.Check(ctx, cfg)
		result.Precheck = &report
		if !report.Healthy() {
			d.logger.Warn("precheck found failing sources", "failed", report.Summary.Failed, "total", report.Summary.Total)
			if opts.AutoDegrade {
				degraded := health.BuildDegradedConfig(cfg, report)
				path := filepath.Join(opts.RuntimeDir, "degraded-"+d.clock().In(cfg.Location()).Format("20060102-150405")+".yaml")
				if err := config.Save(path, degraded); err != nil {
					return result, fmt.Errorf("save degraded config: %w", err)
				}
				active = degraded
				result.ConfigUsed = path
				result.Removed = health.Removed(cfg, degraded)
				for _, src := range result.Removed {
					d.logger.Warn("source disabled for this run", "source", src.Name, "url", src.URL)
				}
			}
		}
	}

	total := max(opts.MaxRetries, 0) + 1
	var lastErr error
	for attempt := 1; attempt <= total; attempt++ {
		result.Attempts = attempt
		run, err := d.pipeline.Run(ctx, active, opts.Run)
		if err == nil {
			result.Run = run
			d.logger.Info("daily run succeeded", "attempt", attempt, "config", result.ConfigUsed)
			if opts.NotifyOnSuccess {
				d.notify(ctx, d.alert(StatusSuccess, attempt, total, run.Brief.ReportDate, result, nil))
			}
			return result, nil
		}

		lastErr = err
		d.logger.Error("daily run attempt failed", "attempt", attempt, "of", total, "error", err)
		if attempt == total {
			break
		}
		if err := d.sleep(ctx, opts.RetryDelay); err != nil {
			lastErr = fmt.Errorf("wait for retry: %w", err)
			break
		}
	}

	reportDate := opts.Run.ReportDay
	if reportDate.IsZero() {
		reportDate = d.clock()
	}
	d.notify(ctx, d.alert(StatusFailed, result.Attempts, total, reportDate.In(cfg.Location()).Format(reportDateLayout), result, lastErr))
	return result, fmt.Errorf("daily run failed after %d attempt(s): %w", result.Attempts, lastErr)
}

func (d *DailyOps) alert(status string, attempt, total int, date string, result DailyOpsResult, err error) domain.Alert {
	a := domain.Alert{
		Status:        status,
		Attempt:       attempt,
		AttemptsTotal: total,
		Date:          date,
		ConfigUsed:    result.ConfigUsed,
	}
	if result.Precheck != nil {
		a.Precheck = result.Precheck.Summary
	}
	if err != nil {
		a.Error = err.Error()
	}
	return a
}

func (d *DailyOps) notify(ctx context.Context, alert domain.Alert) {
	if d.notifier == nil {
		return
	}
	if err := d.notifier.Notify(ctx, alert); err != nil {
		d.logger.Warn("alert delivery failed", "status", alert.Status, "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
