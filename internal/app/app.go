package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsBriefing/internal/config"
	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/health"
	"NewsBriefing/internal/infrastructure/fetch"
	"NewsBriefing/internal/infrastructure/notify"
	"NewsBriefing/internal/infrastructure/output"
	"NewsBriefing/internal/infrastructure/parser"
	"NewsBriefing/internal/infrastructure/scheduler"
	"NewsBriefing/internal/infrastructure/storage"
	"NewsBriefing/internal/infrastructure/telegram"
	"NewsBriefing/internal/infrastructure/weather"
	"NewsBriefing/internal/logging"
	"NewsBriefing/internal/ports"
	"NewsBriefing/internal/render"
	"NewsBriefing/internal/usecase"
)

// Options tunes how the application is assembled.
type Options struct {
	ConfigPath   string
	OutputFormat output.Format
	Logger       *slog.Logger
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	configPath string
	logger     *slog.Logger

	store    *storage.Store
	pipeline *usecase.Pipeline
	checker  *health.Checker
	ops      *usecase.DailyOps
}

// New opens the dedup store and builds every component from cfg.
func New(cfg config.Config, opts Options) (*Application, error) {
	baseLogger := opts.Logger
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	format := opts.OutputFormat
	if format == "" {
		format = output.FormatBoth
	}

	store, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	baseLogger.Debug("store opened", "dialect", store.Dialect())

	client := NewFetchClient(cfg)
	loc := cfg.Location()

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Reader: parser.NewSourceReader(client, baseLogger.With("component", "source")),
		Store:  store,
		Weather: weather.NewOpenMeteo(client, weather.Options{
			Endpoint:  cfg.Weather.Endpoint,
			City:      cfg.City,
			Latitude:  cfg.Weather.Latitude,
			Longitude: cfg.Weather.Longitude,
			Location:  loc,
		}, baseLogger.With("component", "weather")),
		Renderer: render.NewMarkdown(cfg.Strikes.LookaheadDays, loc, time.Now),
		Writer:   output.NewFileWriter(cfg.Output.Dir, format),
		Logger:   baseLogger.With("component", "pipeline"),
	})

	checker := NewChecker(cfg, baseLogger)
	ops := usecase.NewDailyOps(usecase.DailyOpsDeps{
		Pipeline: pipeline,
		Checker:  checker,
		Notifier: Notifier(cfg),
		Logger:   baseLogger.With("component", "daily"),
	})

	return &Application{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		logger:     baseLogger,
		store:      store,
		pipeline:   pipeline,
		checker:    checker,
		ops:        ops,
	}, nil
}

// NewFetchClient builds the shared HTTP adapter.
func NewFetchClient(cfg config.Config) *fetch.Client {
	return fetch.NewClient(fetch.Options{
		Timeout:           cfg.HTTP.Timeout,
		UserAgent:         cfg.HTTP.UserAgent,
		SearchEndpoint:    cfg.Search.Endpoint,
		SearchFallbackURL: cfg.Search.FallbackURL,
		SearchAPIKey:      cfg.Search.APIKey,
	})
}

// NewChecker builds a health checker that needs no store.
func NewChecker(cfg config.Config, log *slog.Logger) *health.Checker {
	client := NewFetchClient(cfg)
	if log != nil {
		log = log.With("component", "health")
	}
	return health.NewChecker(client, client, cfg.Ops.PrecheckTimeout, log)
}

// Notifier fans alerts out to every configured channel, nil when none is.
func Notifier(cfg config.Config) ports.Notifier {
	var targets notify.Multi
	if cfg.Alerts.WebhookURL != "" {
		targets = append(targets, notify.NewWebhook(cfg.Alerts.WebhookURL, nil))
	}
	if cfg.Alerts.Telegram.BotToken != "" && cfg.Alerts.Telegram.ChatID != "" {
		targets = append(targets, telegram.NewNotifier(cfg.Alerts.Telegram.BotToken, cfg.Alerts.Telegram.ChatID))
	}
	if len(targets) == 0 {
		return nil
	}
	return targets
}

// Close releases the store.
func (a *Application) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context, opts usecase.RunOptions) (usecase.RunResult, error) {
	return a.pipeline.Run(ctx, a.cfg, opts)
}

// Check probes every configured source.
func (a *Application) Check(ctx context.Context) health.Report {
	return a.checker.Check(ctx, a.cfg)
}

// Daily runs the unattended wrapper once: precheck, degrade, retry, alert.
func (a *Application) Daily(ctx context.Context, run usecase.RunOptions) (usecase.DailyOpsResult, error) {
	opts := usecase.OptionsFromConfig(a.cfg, a.configPath)
	opts.Run = run
	return a.ops.Execute(ctx, a.cfg, opts)
}

// Serve runs the daily wrapper on the configured cron schedule until ctx ends.
func (a *Application) Serve(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Location(), a.logger.With("component", "scheduler"))
	sched := usecase.NewScheduler(driver, a.ops, a.cfg, usecase.OptionsFromConfig(a.cfg, a.configPath), a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("waiting for scheduled runs", "next", driver.Next(time.Now()))

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}

// RecentRuns lists the latest persisted runs.
func (a *Application) RecentRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	return a.store.RecentRuns(ctx, limit)
}
