package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/scanner"
)

const (
	defaultStrikeTitle = "Strike"
	minStrikeColumns   = 12
)

// Column layout of the ministry strike table.
const (
	colStart = iota
	colEnd
	colUnions
	colSector
	colCategory
	colModality
	colRelevance
	colNotes
	colProclaimed
	colRegion
	colProvince
	colReceived
)

var (
	strikeDateExpr   = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	strikeClockExpr  = regexp.MustCompile(`(?i)DALLE\s+(\d{1,2})[.:](\d{2})\s+ALLE\s+(\d{1,2})[.:](\d{2})`)
	strikeImpactExpr = regexp.MustCompile(`(?i)(\d{1,2}\s*ORE[^.;]*|INTERA\s+GIORNATA[^.;]*|DALLE\s+\d{1,2}[.:]\d{2}\s+ALLE\s+\d{1,2}[.:]\d{2})`)
)

// ParseJSONStrikes reads strike rows from a list or an items/data object.
// A missing title falls back to a placeholder; the dates still make the row useful.
func ParseJSONStrikes(req scanner.Request, payload any) []domain.StrikeItem {
	rows := unwrapRows(payload, "items", "data")

	out := make([]domain.StrikeItem, 0, len(rows))
	for _, row := range rows {
		title := strings.TrimSpace(anyString(row["title"]))
		if title == "" {
			title = defaultStrikeTitle
		}
		start := parseTime(anyString(row["start"]), req.Location)
		end := parseTime(anyString(row["end"]), req.Location)
		if end == nil {
			end = start
		}

		out = append(out, domain.StrikeItem{
			Title:        title,
			Start:        start,
			End:          end,
			ImpactWindow: strings.TrimSpace(anyString(row["impact_window"])),
			City:         strings.TrimSpace(anyString(row["city"])),
		})
	}
	return out
}

// ParseRSSStrikes extracts dates, hours, impact and city from free-text feed entries.
func ParseRSSStrikes(req scanner.Request, body string) ([]domain.StrikeItem, error) {
	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	out := make([]domain.StrikeItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		text := strings.TrimSpace(strings.Join([]string{entry.Title, entry.Description, entry.Content}, " "))
		if text == "" {
			continue
		}

		start, end := extractStrikeWindow(text, req.Location)
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = defaultStrikeTitle
		}

		out = append(out, domain.StrikeItem{
			Title:        title,
			Start:        start,
			End:          end,
			ImpactWindow: extractImpactWindow(text),
			City:         extractCityHint(text),
		})
	}
	return out, nil
}

// ParseHTMLStrikes reads the fixed-layout strike table. Rows with fewer than
// 12 cells or without any parseable date are skipped.
func ParseHTMLStrikes(req scanner.Request, page string) []domain.StrikeItem {
	out := make([]domain.StrikeItem, 0)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return out
	}

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var cols []string
		row.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			inner, err := cell.Html()
			if err != nil {
				inner = cell.Text()
			}
			cols = append(cols, cleanHTML(inner))
		})
		if len(cols) < minStrikeColumns {
			return
		}

		start := parseDDMMYYYY(cols[colStart], req.Location)
		end := parseDDMMYYYY(cols[colEnd], req.Location)
		if start == nil && end == nil {
			return
		}
		if end == nil {
			end = start
		}

		title := strings.Trim(cols[colSector]+" | "+cols[colCategory], " |")
		if title == "" {
			title = defaultStrikeTitle
		}

		var place []string
		for _, p := range []string{cols[colRegion], cols[colProvince]} {
			if p != "" {
				place = append(place, p)
			}
		}

		out = append(out, domain.StrikeItem{
			Title:        title,
			Start:        start,
			End:          end,
			ImpactWindow: cols[colModality],
			City:         strings.Join(place, "/"),
		})
	})
	return out
}

// extractStrikeWindow reads up to two dd/mm/yyyy tokens and an optional
// "DALLE hh.mm ALLE hh.mm" range. Hours are clamped to 23.
func extractStrikeWindow(text string, loc *time.Location) (*time.Time, *time.Time) {
	dates := strikeDateExpr.FindAllString(text, -1)

	var start, end *time.Time
	if len(dates) >= 1 {
		start = parseDDMMYYYY(dates[0], loc)
	}
	if len(dates) >= 2 {
		end = parseDDMMYYYY(dates[1], loc)
	}
	if end == nil {
		end = start
	}

	m := strikeClockExpr.FindStringSubmatch(text)
	if m == nil || start == nil {
		return start, end
	}
	sh, _ := strconv.Atoi(m[1])
	sm, _ := strconv.Atoi(m[2])
	eh, _ := strconv.Atoi(m[3])
	em, _ := strconv.Atoi(m[4])

	s := withClock(*start, min(sh, 23), sm)
	base := s
	if end != nil {
		base = *end
	}
	e := withClock(base, min(eh, 23), em)
	return &s, &e
}

func extractImpactWindow(text string) string {
	m := strikeImpactExpr.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return collapseSpace(m[1])
}

func extractCityHint(text string) string {
	low := strings.ToLower(text)
	switch {
	case strings.Contains(low, "milano"), strings.Contains(low, "milan"):
		return "Milano"
	case strings.Contains(low, "lombardia"):
		return "Lombardia"
	case strings.Contains(low, "italia"), strings.Contains(low, "tutte"):
		return "Italia/Tutte"
	}
	return ""
}
