package parser

import (
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/scanner"
)

var jsonNewsKeys = []string{"items", "data", "articles"}

// consumed JSON keys never copied into Extra.
var jsonNewsFields = map[string]struct{}{
	"title": {}, "url": {}, "summary": {}, "published_at": {}, "date": {},
}

// ParseRSSNews maps feed entries to news items. Entries without title or link are skipped.
func ParseRSSNews(req scanner.Request, body string) ([]domain.NewsItem, error) {
	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	out := make([]domain.NewsItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		title := strings.TrimSpace(entry.Title)
		link := strings.TrimSpace(entry.Link)
		if title == "" || link == "" {
			continue
		}

		stamp := entry.Published
		if strings.TrimSpace(stamp) == "" {
			stamp = entry.Updated
		}

		item := domain.NewsItem{
			Section:     req.Section,
			Title:       title,
			URL:         link,
			Source:      req.SourceName,
			PublishedAt: parseTime(stamp, req.Location),
			Summary:     strings.TrimSpace(entry.Description),
		}
		if len(entry.Categories) > 0 {
			item.Extra = map[string]any{"categories": append([]string(nil), entry.Categories...)}
		}
		out = append(out, item)
	}
	return out, nil
}

// ParseJSONNews handles a list of objects or an object with items/data/articles.
func ParseJSONNews(req scanner.Request, payload any) []domain.NewsItem {
	rows := unwrapRows(payload, jsonNewsKeys...)

	out := make([]domain.NewsItem, 0, len(rows))
	for _, row := range rows {
		title := strings.TrimSpace(anyString(row["title"]))
		link := strings.TrimSpace(anyString(row["url"]))
		if title == "" || link == "" {
			continue
		}

		item := domain.NewsItem{
			Section:     req.Section,
			Title:       title,
			URL:         link,
			Source:      req.SourceName,
			PublishedAt: parseTime(firstString(row, "published_at", "date"), req.Location),
			Summary:     strings.TrimSpace(anyString(row["summary"])),
		}
		for k, v := range row {
			if _, skip := jsonNewsFields[k]; skip {
				continue
			}
			if item.Extra == nil {
				item.Extra = map[string]any{}
			}
			item.Extra[k] = v
		}
		out = append(out, item)
	}
	return out
}

// ParseSearchNews stamps every result with req.Now since search results carry no date.
// Search items are therefore always fresh for the recency filter.
func ParseSearchNews(req scanner.Request, results []domain.SearchResult) []domain.NewsItem {
	now := req.Now
	if req.Location != nil {
		now = now.In(req.Location)
	}

	out := make([]domain.NewsItem, 0, len(results))
	for _, r := range results {
		title := strings.TrimSpace(r.Title)
		link := strings.TrimSpace(r.URL)
		if title == "" || link == "" {
			continue
		}

		stamp := now
		out = append(out, domain.NewsItem{
			Section:     req.Section,
			Title:       title,
			URL:         link,
			Source:      req.SourceName,
			PublishedAt: &stamp,
			Summary:     strings.TrimSpace(r.Description),
			Extra:       map[string]any{"origin": "search"},
		})
	}
	return out
}
