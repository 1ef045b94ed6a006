package health

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"NewsBriefing/internal/config"
	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/infrastructure/fetch"
	"NewsBriefing/internal/ports"
)

const (
	peekBytes      = 2048
	defaultTimeout = 12 * time.Second
)

// Probe details.
const (
	DetailEmptyURL     = "empty_url"
	DetailRSSLike      = "rss_like"
	DetailJSONLike     = "json_like"
	DetailHTMLLike     = "html_like"
	DetailUnknownShape = "unknown_shape"
	DetailAssumedOK    = "unknown_type_assumed_ok"
	DetailSearchOK     = "search_ok"
)

// Checker probes every configured source once, sequentially.
type Checker struct {
	prober  ports.Prober
	fetcher ports.Fetcher
	timeout time.Duration
	logger  *slog.Logger
}

// NewChecker wires the probe and search transports. timeout bounds each probe.
func NewChecker(prober ports.Prober, fetcher ports.Fetcher, timeout time.Duration, log *slog.Logger) *Checker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Checker{prober: prober, fetcher: fetcher, timeout: timeout, logger: log}
}

// Check never fails: every error becomes a failed result.
func (c *Checker) Check(ctx context.Context, cfg config.Config) Report {
	var results []Result
	for _, section := range domain.AllSections {
		for _, src := range cfg.Section(section).Sources {
			res := c.probe(ctx, section, src)
			if c.logger != nil {
				c.logger.Debug("probed source", "section", section, "source", src.Name, "ok", res.OK, "detail", res.Detail)
			}
			results = append(results, res)
		}
	}

	report := NewReport(results)
	if c.logger != nil {
		c.logger.Info("health check done", "total", report.Summary.Total, "ok", report.Summary.OK, "failed", report.Summary.Failed)
	}
	return report
}

func (c *Checker) probe(ctx context.Context, section domain.Section, src config.Source) Result {
	res := Result{
		Section: string(section),
		Name:    src.Name,
		Type:    string(src.Type),
		URL:     src.URL,
	}
	if strings.TrimSpace(src.URL) == "" {
		res.Detail = DetailEmptyURL
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if src.Type == domain.SourceSearch {
		if c.fetcher == nil {
			res.Detail = "fetch_error:" + fetch.CategoryTransport
			return res
		}
		results, err := c.fetcher.Search(ctx, src.URL, 1, src.Country)
		if err != nil {
			res.Detail = "fetch_error:" + fetch.Category(err)
			return res
		}
		res.OK = true
		res.Detail = fmt.Sprintf("%s:%d", DetailSearchOK, len(results))
		return res
	}

	if c.prober == nil {
		res.Detail = "fetch_error:" + fetch.CategoryTransport
		return res
	}
	status, head, err := c.prober.Peek(ctx, src.URL, peekBytes)
	if err != nil {
		res.Detail = "fetch_error:" + fetch.Category(err)
		return res
	}
	res.StatusCode = &status

	shapeOK, detail := Shape(src.Type, head)
	res.Detail = detail
	if status >= http.StatusBadRequest {
		res.Detail = fmt.Sprintf("http_status:%d", status)
	}
	res.OK = shapeOK && status < http.StatusBadRequest
	return res
}

// Shape applies the per-type content heuristic to the head of a payload.
func Shape(typ domain.SourceType, head []byte) (bool, string) {
	trimmed := bytes.TrimSpace(head)
	low := strings.ToLower(string(trimmed))

	switch typ {
	case domain.SourceRSS:
		if strings.Contains(low, "<rss") || strings.Contains(low, "<feed") || strings.HasPrefix(low, "<?xml") {
			return true, DetailRSSLike
		}
	case domain.SourceJSON:
		if bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("[")) {
			return true, DetailJSONLike
		}
	case domain.SourceHTML:
		if strings.Contains(low, "<html") || strings.Contains(low, "<table") || strings.Contains(low, "<!doctype html") {
			return true, DetailHTMLLike
		}
	default:
		return true, DetailAssumedOK
	}
	return false, DetailUnknownShape
}
