package app

import (
	"context"
	"path/filepath"
	"testing"

	"NewsBriefing/internal/config"
	"NewsBriefing/internal/infrastructure/notify"
	"NewsBriefing/internal/logging"
)

func TestNotifierSelection(t *testing.T) {
	t.Parallel()

	var cfg config.Config
	if n := Notifier(cfg); n != nil {
		t.Fatalf("expected no notifier without targets, got %T", n)
	}

	cfg.Alerts.WebhookURL = "https://hooks.example/briefing"
	multi, ok := Notifier(cfg).(notify.Multi)
	if !ok || len(multi) != 1 {
		t.Fatalf("expected webhook only, got %#v", Notifier(cfg))
	}

	cfg.Alerts.Telegram.BotToken = "token"
	if multi := Notifier(cfg).(notify.Multi); len(multi) != 1 {
		t.Fatalf("telegram needs a chat id too, got %d targets", len(multi))
	}
	cfg.Alerts.Telegram.ChatID = "42"
	if multi := Notifier(cfg).(notify.Multi); len(multi) != 2 {
		t.Fatalf("expected webhook and telegram, got %d targets", len(multi))
	}
}

func TestNewOpensStore(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte("timezone: Europe/Rome\n"))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	dir := t.TempDir()
	cfg.Database.DSN = filepath.Join(dir, "data", "briefing.db")
	cfg.Output.Dir = filepath.Join(dir, "output")

	application, err := New(cfg, Options{Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer application.Close()

	runs, err := application.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentRuns error: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty history, got %d runs", len(runs))
	}
}
