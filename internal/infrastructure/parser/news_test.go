package parser

import (
	"testing"
	"time"

	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/scanner"
)

const newsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>ANSA</title>
  <item>
    <title>Uno</title><link>https://a.example/1</link>
    <pubDate>Mon, 23 Feb 2026 08:00:00 +0100</pubDate>
    <description> Primo pezzo </description>
    <category>politica</category>
  </item>
  <item><title></title><link>https://a.example/2</link></item>
  <item><title>Senza link</title></item>
  <item>
    <title>Tre</title><link>https://a.example/3</link>
    <pubDate>2026-02-23 09:30</pubDate>
  </item>
  <item><title>Quattro</title><link>https://a.example/4</link></item>
</channel></rss>`

func rome(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestParseRSSNews(t *testing.T) {
	t.Parallel()

	req := scanner.Request{Section: domain.SectionItalianNews, SourceName: "ansa", Location: rome(t)}
	items, err := ParseRSSNews(req, newsFeed)
	if err != nil {
		t.Fatalf("ParseRSSNews error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "Uno" || first.Source != "ansa" || first.Section != domain.SectionItalianNews {
		t.Fatalf("unexpected first item %+v", first)
	}
	if first.Summary != "Primo pezzo" {
		t.Fatalf("unexpected summary %q", first.Summary)
	}
	if first.PublishedAt == nil || !first.PublishedAt.Equal(time.Date(2026, 2, 23, 7, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published_at %v", first.PublishedAt)
	}
	if cats, ok := first.Extra["categories"].([]string); !ok || len(cats) != 1 || cats[0] != "politica" {
		t.Fatalf("unexpected extra %+v", first.Extra)
	}

	// Zone-less stamps are read in the configured zone, not UTC.
	third := items[1]
	if third.PublishedAt == nil || !third.PublishedAt.Equal(time.Date(2026, 2, 23, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected 09:30 Rome time, got %v", third.PublishedAt)
	}

	if items[2].PublishedAt != nil {
		t.Fatalf("expected nil timestamp, got %v", items[2].PublishedAt)
	}
}

func TestParseRSSNewsBrokenFeed(t *testing.T) {
	t.Parallel()

	if _, err := ParseRSSNews(scanner.Request{Location: time.UTC}, "not a feed at all"); err == nil {
		t.Fatalf("expected error for unparseable feed")
	}
}

func TestParseJSONNews(t *testing.T) {
	t.Parallel()

	payload := map[string]any{
		"items": []any{},
		"articles": []any{
			map[string]any{
				"title":   "Borsa in rialzo",
				"url":     "https://b.example/borsa",
				"date":    "2026-02-23T10:00:00Z",
				"summary": "FTSE MIB +1%",
				"image":   "https://b.example/img.png",
			},
			"not an object",
			map[string]any{"title": "senza url"},
		},
	}

	req := scanner.Request{Section: domain.SectionWorldNews, SourceName: "json-src", Location: rome(t)}
	items := ParseJSONNews(req, payload)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.Summary != "FTSE MIB +1%" {
		t.Fatalf("unexpected summary %q", item.Summary)
	}
	if item.PublishedAt == nil || !item.PublishedAt.Equal(time.Date(2026, 2, 23, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published_at %v", item.PublishedAt)
	}
	if item.Extra["image"] != "https://b.example/img.png" {
		t.Fatalf("expected unconsumed field in extra, got %+v", item.Extra)
	}
	if _, ok := item.Extra["title"]; ok {
		t.Fatalf("consumed field leaked into extra")
	}
}

func TestParseJSONNewsShapes(t *testing.T) {
	t.Parallel()

	row := map[string]any{"title": "T", "url": "https://u.example", "published_at": "2026-02-23"}
	tests := []struct {
		name    string
		payload any
		want    int
	}{
		{name: "top level list", payload: []any{row}, want: 1},
		{name: "data key", payload: map[string]any{"data": []any{row, row}}, want: 2},
		{name: "unknown key", payload: map[string]any{"results": []any{row}}, want: 0},
		{name: "scalar", payload: "oops", want: 0},
		{name: "nil", payload: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseJSONNews(scanner.Request{Location: time.UTC}, tt.payload)
			if got == nil {
				t.Fatalf("expected non-nil slice")
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d items, got %d", tt.want, len(got))
			}
		})
	}
}

func TestParseSearchNewsStampsNow(t *testing.T) {
	t.Parallel()

	loc := rome(t)
	now := time.Date(2026, 2, 23, 6, 0, 0, 0, time.UTC)
	req := scanner.Request{Section: domain.SectionMilanEvents, SourceName: "search", Location: loc, Now: now}

	items := ParseSearchNews(req, []domain.SearchResult{
		{Title: "Concerto", URL: "https://c.example", Description: "stasera"},
		{Title: "", URL: "https://skip.example"},
	})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	ts := items[0].PublishedAt
	if ts == nil || !ts.Equal(now) || ts.Location() != loc {
		t.Fatalf("expected now in Rome, got %v", ts)
	}
	if items[0].Summary != "stasera" {
		t.Fatalf("unexpected summary %q", items[0].Summary)
	}
}

func TestParseJSONNewsDayFirstDate(t *testing.T) {
	t.Parallel()

	loc := rome(t)
	payload := []any{map[string]any{"title": "Navigli", "url": "https://m.example/navigli", "date": "23/02/2026 08:00"}}

	items := ParseJSONNews(scanner.Request{Section: domain.SectionMilanEvents, SourceName: "m", Location: loc}, payload)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	want := time.Date(2026, 2, 23, 8, 0, 0, 0, loc)
	if items[0].PublishedAt == nil || !items[0].PublishedAt.Equal(want) {
		t.Fatalf("unexpected published_at %v", items[0].PublishedAt)
	}
}
