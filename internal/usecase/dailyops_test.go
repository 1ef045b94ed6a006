package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"NewsBriefing/internal/config"
	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/health"
	"NewsBriefing/internal/scanner"
)

type fakeChecker struct {
	report health.Report
}

func (f fakeChecker) Check(context.Context, config.Config) health.Report { return f.report }

type recordingReader struct {
	fakeReader
	mu    sync.Mutex
	names []string
}

func (r *recordingReader) News(ctx context.Context, req scanner.Request, src config.Source) ([]domain.NewsItem, error) {
	r.mu.Lock()
	r.names = append(r.names, src.Name)
	r.mu.Unlock()
	return r.fakeReader.News(ctx, req, src)
}

// flakyWeather fails the first n calls.
type flakyWeather struct {
	failures int
	calls    int
}

func (f *flakyWeather) Forecast(ctx context.Context, day time.Time) (domain.WeatherInfo, error) {
	f.calls++
	if f.calls <= f.failures {
		return domain.WeatherInfo{}, errors.New("forecast unavailable")
	}
	return fakeWeather{}.Forecast(ctx, day)
}

type fakeNotifier struct {
	alerts []domain.Alert
}

func (f *fakeNotifier) Notify(_ context.Context, alert domain.Alert) error {
	f.alerts = append(f.alerts, alert)
	return nil
}

func fixedClock(t *testing.T) func() time.Time {
	now := time.Date(2026, 2, 23, 7, 0, 0, 0, rome(t))
	return func() time.Time { return now }
}

func TestDailyOpsDegradesFailingSources(t *testing.T) {
	t.Parallel()

	cfg := parseConfig(t, pipelineYAML)
	report := health.NewReport([]health.Result{
		{Section: "italian_news", Name: "ansa", Type: "rss", URL: "https://ansa.example/rss", OK: true, Detail: health.DetailRSSLike},
		{Section: "italian_news", Name: "broken", Type: "rss", URL: "https://broken.example/rss", Detail: "http_status:503"},
	})
	reader := &recordingReader{}
	notifier := &fakeNotifier{}
	ops := NewDailyOps(DailyOpsDeps{
		Pipeline: newTestPipeline(t, reader, newFakeStore(), fakeWeather{}),
		Checker:  fakeChecker{report: report},
		Notifier: notifier,
		Clock:    fixedClock(t),
	})

	opts := OptionsFromConfig(cfg, "config/sources.yaml")
	opts.RuntimeDir = t.TempDir()
	opts.Run.DryRun = true

	res, err := ops.Execute(context.Background(), cfg, opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	wantPath := filepath.Join(opts.RuntimeDir, "degraded-20260223-070000.yaml")
	if res.ConfigUsed != wantPath {
		t.Fatalf("expected degraded config %s, got %s", wantPath, res.ConfigUsed)
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Fatalf("degraded config not written: %v", err)
	}
	if len(res.Removed) != 1 || res.Removed[0].Name != "broken" {
		t.Fatalf("unexpected removed sources %+v", res.Removed)
	}

	saved, err := config.Load(wantPath)
	if err != nil {
		t.Fatalf("load degraded config: %v", err)
	}
	if n := len(saved.ItalianNews.Sources); n != 2 {
		t.Fatalf("expected 2 italian sources in degraded config, got %d", n)
	}

	for _, name := range reader.names {
		if name == "broken" {
			t.Fatalf("degraded run still read the failing source")
		}
	}
	if len(notifier.alerts) != 0 {
		t.Fatalf("success must not alert unless asked, got %+v", notifier.alerts)
	}
	if res.Precheck == nil || res.Precheck.Summary.Failed != 1 {
		t.Fatalf("expected precheck summary, got %+v", res.Precheck)
	}
}

func TestDailyOpsRetriesThenAlerts(t *testing.T) {
	t.Parallel()

	cfg := parseConfig(t, pipelineYAML)
	weather := &flakyWeather{failures: 10}
	notifier := &fakeNotifier{}
	var waits []time.Duration
	ops := NewDailyOps(DailyOpsDeps{
		Pipeline: newTestPipeline(t, &fakeReader{}, newFakeStore(), weather),
		Notifier: notifier,
		Clock:    fixedClock(t),
		Sleep: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	})

	opts := DailyOpsOptions{
		ConfigPath:   "config/sources.yaml",
		MaxRetries:   2,
		RetryDelay:   2 * time.Minute,
		SkipPrecheck: true,
	}
	res, err := ops.Execute(context.Background(), cfg, opts)
	if err == nil {
		t.Fatalf("expected failure after retries")
	}
	if res.Attempts != 3 || weather.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d (weather calls %d)", res.Attempts, weather.calls)
	}
	if len(waits) != 2 || waits[0] != 2*time.Minute {
		t.Fatalf("unexpected waits %v", waits)
	}

	if len(notifier.alerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(notifier.alerts))
	}
	alert := notifier.alerts[0]
	if alert.Status != StatusFailed || alert.Attempt != 3 || alert.AttemptsTotal != 3 {
		t.Fatalf("unexpected alert %+v", alert)
	}
	if alert.Date != "2026-02-23" || alert.ConfigUsed != "config/sources.yaml" || alert.Error == "" {
		t.Fatalf("unexpected alert details %+v", alert)
	}
}

func TestDailyOpsNotifiesSuccessOnlyWhenAsked(t *testing.T) {
	t.Parallel()

	for _, onSuccess := range []bool{false, true} {
		cfg := parseConfig(t, pipelineYAML)
		weather := &flakyWeather{failures: 1}
		notifier := &fakeNotifier{}
		ops := NewDailyOps(DailyOpsDeps{
			Pipeline: newTestPipeline(t, &fakeReader{}, newFakeStore(), weather),
			Notifier: notifier,
			Clock:    fixedClock(t),
			Sleep:    func(context.Context, time.Duration) error { return nil },
		})

		res, err := ops.Execute(context.Background(), cfg, DailyOpsOptions{
			MaxRetries:      1,
			SkipPrecheck:    true,
			NotifyOnSuccess: onSuccess,
			Run:             RunOptions{DryRun: true},
		})
		if err != nil {
			t.Fatalf("on_success=%v: Execute error: %v", onSuccess, err)
		}
		if res.Attempts != 2 {
			t.Fatalf("on_success=%v: expected success on attempt 2, got %d", onSuccess, res.Attempts)
		}

		want := 0
		if onSuccess {
			want = 1
		}
		if len(notifier.alerts) != want {
			t.Fatalf("on_success=%v: expected %d alerts, got %d", onSuccess, want, len(notifier.alerts))
		}
		if onSuccess && (notifier.alerts[0].Status != StatusSuccess || notifier.alerts[0].Attempt != 2) {
			t.Fatalf("unexpected success alert %+v", notifier.alerts[0])
		}
	}
}

func TestDailyOpsStopsWaitingWhenCancelled(t *testing.T) {
	t.Parallel()

	cfg := parseConfig(t, pipelineYAML)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ops := NewDailyOps(DailyOpsDeps{
		Pipeline: newTestPipeline(t, &fakeReader{}, newFakeStore(), &flakyWeather{failures: 10}),
		Clock:    fixedClock(t),
	})
	res, err := ops.Execute(ctx, cfg, DailyOpsOptions{MaxRetries: 5, RetryDelay: time.Hour, SkipPrecheck: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if res.Attempts != 1 {
		t.Fatalf("expected to stop after the first attempt, got %d", res.Attempts)
	}
}

func TestDailyOpsDegradedConfigKeepsEnvSecretsOut(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://briefing:S3cretPass@db/briefing")
	t.Setenv("ALERT_WEBHOOK_URL", "https://hooks.example/SECRETTOKEN")

	cfg := parseConfig(t, pipelineYAML)
	report := health.NewReport([]health.Result{
		{Section: "italian_news", Name: "broken", Type: "rss", URL: "https://broken.example/rss", Detail: "fetch_error:timeout"},
	})
	ops := NewDailyOps(DailyOpsDeps{
		Pipeline: newTestPipeline(t, &fakeReader{}, newFakeStore(), fakeWeather{}),
		Checker:  fakeChecker{report: report},
		Clock:    fixedClock(t),
	})

	opts := OptionsFromConfig(cfg, "config/sources.yaml")
	opts.RuntimeDir = t.TempDir()
	opts.Run.DryRun = true
	res, err := ops.Execute(context.Background(), cfg, opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	raw, err := os.ReadFile(res.ConfigUsed)
	if err != nil {
		t.Fatalf("read degraded config: %v", err)
	}
	for _, secret := range []string{"S3cretPass", "SECRETTOKEN"} {
		if strings.Contains(string(raw), secret) {
			t.Fatalf("degraded config carries env value %q", secret)
		}
	}
}
