package parser

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	ddmmyyyyExpr = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)
	tagExpr      = regexp.MustCompile(`<[^>]+>`)
)

// Day-first layouts tried when the permissive parser gives up.
var dayFirstLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006 15:04",
	"2/1/2006",
}

// parseTime accepts any common date layout; zone-less values are taken in loc.
// Slash dates are month first unless the first number cannot be a month.
func parseTime(value string, loc *time.Location) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := dateparse.ParseIn(value, loc, dateparse.RetryAmbiguousDateWithSwap(true)); err == nil {
		return &t
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return &t
		}
	}
	return nil
}

// parseDDMMYYYY finds the first dd/mm/yyyy token and returns local midnight of that day.
func parseDDMMYYYY(value string, loc *time.Location) *time.Time {
	m := ddmmyyyyExpr.FindStringSubmatch(value)
	if m == nil {
		return nil
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// Reject overflowing dates like 31/02 instead of normalizing them.
	if t.Day() != day || int(t.Month()) != month {
		return nil
	}
	return &t
}

// withClock moves t to hh:mm of the same local day.
func withClock(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// cleanHTML strips tags, unescapes entities and collapses whitespace.
func cleanHTML(value string) string {
	noTags := tagExpr.ReplaceAllString(value, " ")
	return collapseSpace(html.UnescapeString(noTags))
}

func collapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// anyString renders a decoded JSON scalar as text.
func anyString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// firstString returns the first non-empty value among keys.
func firstString(row map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(anyString(row[k])); s != "" {
			return s
		}
	}
	return ""
}

// unwrapRows accepts a list of objects or an object exposing one of keys as a list.
// Non-object rows are dropped.
func unwrapRows(payload any, keys ...string) []map[string]any {
	var candidates []any
	switch v := payload.(type) {
	case []any:
		candidates = v
	case map[string]any:
		for _, k := range keys {
			if list, ok := v[k].([]any); ok && len(list) > 0 {
				candidates = list
				break
			}
		}
	}

	rows := make([]map[string]any, 0, len(candidates))
	for _, c := range candidates {
		if row, ok := c.(map[string]any); ok {
			rows = append(rows, row)
		}
	}
	return rows
}
