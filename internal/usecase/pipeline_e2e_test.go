package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"NewsBriefing/internal/infrastructure/fetch"
	"NewsBriefing/internal/infrastructure/output"
	"NewsBriefing/internal/infrastructure/parser"
	"NewsBriefing/internal/infrastructure/storage"
	"NewsBriefing/internal/render"
)

const e2eItem = `<item><title>%TITLE%</title><link>https://news.example/%SLUG%</link><pubDate>%DATE%</pubDate></item>`

func e2eFeed(items ...[3]string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>Milano</title>`)
	for _, it := range items {
		r := strings.NewReplacer("%TITLE%", it[0], "%SLUG%", it[1], "%DATE%", it[2])
		b.WriteString(r.Replace(e2eItem))
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func TestPipelineSecondRunSuppressesSeenItems(t *testing.T) {
	t.Parallel()

	first := [][3]string{
		{"Metro M4 apre", "m4", "Mon, 23 Feb 2026 06:00:00 +0100"},
		{"Nebbia in pianura", "nebbia", "Sun, 22 Feb 2026 21:00:00 +0100"},
	}
	extra := [3]string{"Sciopero ATM venerdi", "atm", "Mon, 23 Feb 2026 06:45:00 +0100"}

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		items := first
		if calls.Add(1) > 1 {
			items = append(append([][3]string(nil), first...), extra)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(e2eFeed(items...)))
	}))
	defer srv.Close()

	cfg := parseConfig(t, `
timezone: Europe/Rome
italian_news:
  count: 5
  fallback_days: 1
  sources:
    - {name: milano-today, type: rss, url: "`+srv.URL+`/rss"}
`)

	dir := t.TempDir()
	store, err := storage.Open(filepath.Join(dir, "data", "briefing.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	loc := rome(t)
	now := time.Date(2026, 2, 23, 7, 0, 0, 0, loc)
	clock := func() time.Time { return now }
	p := NewPipeline(PipelineDeps{
		Reader:   parser.NewSourceReader(fetch.NewClient(fetch.Options{Timeout: 5 * time.Second}), nil),
		Store:    store,
		Weather:  fakeWeather{},
		Renderer: render.NewMarkdown(20, loc, clock),
		Writer:   output.NewFileWriter(filepath.Join(dir, "output"), output.FormatBoth),
		Clock:    clock,
	})

	ctx := context.Background()
	run1, err := p.Run(ctx, cfg, RunOptions{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(run1.Brief.ItalianNews) != 2 {
		t.Fatalf("first run: expected 2 items, got %+v", run1.Brief.ItalianNews)
	}

	run2, err := p.Run(ctx, cfg, RunOptions{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	got := run2.Brief.ItalianNews
	if len(got) != 1 || got[0].Title != extra[0] {
		t.Fatalf("second run: expected only the new item, got %+v", got)
	}
	if run2.RunID <= run1.RunID {
		t.Fatalf("expected a new run id, got %d then %d", run1.RunID, run2.RunID)
	}

	items, err := store.ListRunItems(ctx, run2.RunID)
	if err != nil {
		t.Fatalf("list run items: %v", err)
	}
	if len(items) != 1 || items[0].URL != "https://news.example/atm" {
		t.Fatalf("unexpected run items %+v", items)
	}
	if !strings.Contains(run2.Text, "Sciopero ATM venerdi") || strings.Contains(run2.Text, "Metro M4 apre") {
		t.Fatalf("rendered brief still lists seen items:\n%s", run2.Text)
	}
}
