package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsBriefing/internal/domain"
)

const (
	defaultSearchCount = 10
	// Brave caps a single web search page at 10 results.
	maxAPIResults = 10
)

// Search queries the API backend when a key is configured, otherwise scrapes the HTML fallback.
// The result is never nil.
func (c *Client) Search(ctx context.Context, query string, count int, country string) ([]domain.SearchResult, error) {
	if count <= 0 {
		count = defaultSearchCount
	}
	if c.apiKey == "" {
		return c.searchFallback(ctx, query, count)
	}
	return c.searchAPI(ctx, query, count, country)
}

func (c *Client) searchAPI(ctx context.Context, query string, count int, country string) ([]domain.SearchResult, error) {
	if c.searchURL == "" {
		return nil, &FetchError{URL: c.searchURL, Err: fmt.Errorf("search endpoint is not configured")}
	}

	endpoint, err := url.Parse(c.searchURL)
	if err != nil {
		return nil, &FetchError{URL: c.searchURL, Err: fmt.Errorf("invalid search endpoint: %w", err)}
	}
	q := endpoint.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(min(count, maxAPIResults)))
	if country != "" {
		q.Set("country", country)
	}
	endpoint.RawQuery = q.Encode()

	body, err := c.get(ctx, endpoint.String(), map[string]string{
		"Accept":               "application/json",
		"X-Subscription-Token": c.apiKey,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{URL: endpoint.String(), Err: fmt.Errorf("decode search response: %w", err)}
	}

	results := make([]domain.SearchResult, 0, len(payload.Web.Results))
	for _, r := range payload.Web.Results {
		results = append(results, domain.SearchResult{
			Title:       r.Title,
			URL:         r.URL,
			Description: r.Description,
		})
	}
	return results, nil
}

func (c *Client) searchFallback(ctx context.Context, query string, count int) ([]domain.SearchResult, error) {
	if c.fallbackURL == "" {
		return nil, &FetchError{URL: c.fallbackURL, Err: fmt.Errorf("search fallback is not configured")}
	}

	form := url.Values{}
	form.Set("q", query)

	req, err := c.newRequest(ctx, http.MethodPost, c.fallbackURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return ParseFallbackResults(string(body), count), nil
}

// ParseFallbackResults extracts result blocks from the HTML search page.
// A page without the expected markers yields an empty slice.
func ParseFallbackResults(page string, count int) []domain.SearchResult {
	results := make([]domain.SearchResult, 0)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return results
	}

	doc.Find(".result").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		title := strings.TrimSpace(block.Find(".result__title").First().Text())
		link := strings.TrimSpace(block.Find(".result__url").First().Text())
		if title == "" || link == "" {
			return true
		}
		if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
			link = "https://" + link
		}

		results = append(results, domain.SearchResult{
			Title:       title,
			URL:         link,
			Description: strings.TrimSpace(block.Find(".result__snippet").First().Text()),
		})
		return len(results) < count
	})

	return results
}
