package parser

import (
	"testing"
	"time"

	"NewsBriefing/internal/scanner"
)

const strikeFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>MIT</title>
  <item>
    <title>Sciopero TPL Milano</title>
    <description>Dal 25/02/2026 al 26/02/2026 DALLE 25.30 ALLE 18:15 adesione regionale</description>
  </item>
  <item>
    <title></title>
    <description>Sciopero generale INTERA GIORNATA del 03/03/2026, tutte le categorie.</description>
  </item>
  <item>
    <title>Avviso</title>
    <description>8 ORE   di sciopero</description>
  </item>
</channel></rss>`

func TestParseRSSStrikes(t *testing.T) {
	t.Parallel()

	loc := rome(t)
	items, err := ParseRSSStrikes(scanner.Request{Location: loc}, strikeFeed)
	if err != nil {
		t.Fatalf("ParseRSSStrikes error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	tpl := items[0]
	if tpl.Start == nil || !tpl.Start.Equal(time.Date(2026, 2, 25, 23, 30, 0, 0, loc)) {
		t.Fatalf("expected start clamped to 23:30, got %v", tpl.Start)
	}
	if tpl.End == nil || !tpl.End.Equal(time.Date(2026, 2, 26, 18, 15, 0, 0, loc)) {
		t.Fatalf("expected end on second date at 18:15, got %v", tpl.End)
	}
	if tpl.ImpactWindow != "DALLE 25.30 ALLE 18:15" {
		t.Fatalf("unexpected impact window %q", tpl.ImpactWindow)
	}
	if tpl.City != "Milano" {
		t.Fatalf("unexpected city %q", tpl.City)
	}

	general := items[1]
	if general.Title != "Strike" {
		t.Fatalf("expected placeholder title, got %q", general.Title)
	}
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, loc)
	if general.Start == nil || !general.Start.Equal(day) || general.End == nil || !general.End.Equal(day) {
		t.Fatalf("expected single-day window, got %v - %v", general.Start, general.End)
	}
	if general.ImpactWindow != "INTERA GIORNATA del 03/03/2026, tutte le categorie" {
		t.Fatalf("unexpected impact window %q", general.ImpactWindow)
	}
	if general.City != "Italia/Tutte" {
		t.Fatalf("unexpected city %q", general.City)
	}

	undated := items[2]
	if undated.Start != nil || undated.End != nil {
		t.Fatalf("expected no dates, got %v - %v", undated.Start, undated.End)
	}
	if undated.ImpactWindow != "8 ORE di sciopero" {
		t.Fatalf("expected collapsed whitespace, got %q", undated.ImpactWindow)
	}
}

func TestParseJSONStrikes(t *testing.T) {
	t.Parallel()

	loc := rome(t)
	payload := map[string]any{"data": []any{
		map[string]any{"start": "2026-02-25 09:00", "city": " Milano ", "impact_window": "4 ore"},
		map[string]any{"title": "Treni", "start": "2026-02-27T00:00:00+01:00", "end": "2026-02-27T21:00:00+01:00"},
		42,
	}}

	items := ParseJSONStrikes(scanner.Request{Location: loc}, payload)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Strike" {
		t.Fatalf("expected placeholder title, got %q", items[0].Title)
	}
	want := time.Date(2026, 2, 25, 9, 0, 0, 0, loc)
	if items[0].Start == nil || !items[0].Start.Equal(want) {
		t.Fatalf("expected start in configured zone, got %v", items[0].Start)
	}
	if items[0].End == nil || !items[0].End.Equal(want) {
		t.Fatalf("expected end to default to start, got %v", items[0].End)
	}
	if items[0].City != "Milano" || items[0].ImpactWindow != "4 ore" {
		t.Fatalf("unexpected item %+v", items[0])
	}
	if items[1].End == nil || items[1].End.UTC().Hour() != 20 {
		t.Fatalf("unexpected end %v", items[1].End)
	}
}

const strikeTable = `<html><body><table>
<tr><th>Inizio</th><th>Fine</th><th>Sindacati</th><th>Settore</th><th>Categoria</th><th>Modalita</th>
<th>Rilevanza</th><th>Note</th><th>Proclamazione</th><th>Regione</th><th>Provincia</th><th>Ricezione</th></tr>
<tr>
  <td>25/02/2026</td><td><span>26/02/2026</span></td><td>USB</td>
  <td>Trasporto pubblico locale</td><td><b>ATM</b>&nbsp;Milano</td><td>4 ore:
  dalle 8.45 alle 15</td>
  <td>Locale</td><td></td><td>20/02/2026</td><td>Lombardia</td><td>Milano</td><td>20/02/2026</td>
</tr>
<tr><td>27/02/2026</td><td>27/02/2026</td><td>only</td><td>eleven</td><td>cells</td><td></td>
<td></td><td></td><td></td><td></td><td></td></tr>
<tr>
  <td>n/d</td><td>05/03/2026</td><td></td><td></td><td></td><td>24 ore</td>
  <td></td><td></td><td></td><td></td><td></td><td></td>
</tr>
<tr>
  <td>06/03/2026</td><td>-</td><td></td><td>Ferroviario &amp; merci</td><td></td><td>intera giornata</td>
  <td></td><td></td><td></td><td>Nazionale</td><td></td><td></td>
</tr>
</table></body></html>`

func TestParseHTMLStrikes(t *testing.T) {
	t.Parallel()

	loc := rome(t)
	items := ParseHTMLStrikes(scanner.Request{Location: loc}, strikeTable)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	tpl := items[0]
	if tpl.Title != "Trasporto pubblico locale | ATM Milano" {
		t.Fatalf("unexpected title %q", tpl.Title)
	}
	if tpl.City != "Lombardia/Milano" {
		t.Fatalf("unexpected city %q", tpl.City)
	}
	if tpl.ImpactWindow != "4 ore: dalle 8.45 alle 15" {
		t.Fatalf("unexpected impact window %q", tpl.ImpactWindow)
	}
	if tpl.Start == nil || !tpl.Start.Equal(time.Date(2026, 2, 25, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected start %v", tpl.Start)
	}
	if tpl.End == nil || !tpl.End.Equal(time.Date(2026, 2, 26, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected end %v", tpl.End)
	}

	endOnly := items[1]
	if endOnly.Start != nil || endOnly.End == nil {
		t.Fatalf("expected end-only row, got %v - %v", endOnly.Start, endOnly.End)
	}
	if endOnly.Title != "Strike" || endOnly.City != "" {
		t.Fatalf("unexpected end-only row %+v", endOnly)
	}

	rail := items[2]
	if rail.Title != "Ferroviario & merci" {
		t.Fatalf("expected unescaped title without separator, got %q", rail.Title)
	}
	if rail.End == nil || !rail.End.Equal(*rail.Start) {
		t.Fatalf("expected end to default to start, got %v", rail.End)
	}
	if rail.City != "Nazionale" {
		t.Fatalf("unexpected city %q", rail.City)
	}
}

func TestParseHTMLStrikesGarbage(t *testing.T) {
	t.Parallel()

	items := ParseHTMLStrikes(scanner.Request{Location: time.UTC}, "<<<not html")
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", items)
	}
}

func TestParseJSONStrikesDayFirstDates(t *testing.T) {
	t.Parallel()

	loc := rome(t)
	payload := []any{map[string]any{"title": "ATM", "start": "23/02/2026", "end": "24/02/2026"}}

	items := ParseJSONStrikes(scanner.Request{Location: loc}, payload)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Start == nil || !items[0].Start.Equal(time.Date(2026, 2, 23, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected start %v", items[0].Start)
	}
	if items[0].End == nil || !items[0].End.Equal(time.Date(2026, 2, 24, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected end %v", items[0].End)
	}
}

func TestExtractStrikeWindowInvalidEndFallsBackToStart(t *testing.T) {
	t.Parallel()

	loc := rome(t)
	start, end := extractStrikeWindow("Sciopero dal 27/02/2026 al 31/02/2026", loc)
	want := time.Date(2026, 2, 27, 0, 0, 0, 0, loc)
	if start == nil || !start.Equal(want) {
		t.Fatalf("unexpected start %v", start)
	}
	if end == nil || !end.Equal(want) {
		t.Fatalf("expected end to default to start, got %v", end)
	}

	start, end = extractStrikeWindow("27/02/2026 31/02/2026 DALLE 09.00 ALLE 17.00", loc)
	if start == nil || start.Hour() != 9 || end == nil || end.Day() != 27 || end.Hour() != 17 {
		t.Fatalf("unexpected clock window %v - %v", start, end)
	}
}
