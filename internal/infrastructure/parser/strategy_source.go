package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"NewsBriefing/internal/config"
	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/ports"
	"NewsBriefing/internal/scanner"
)

const (
	defaultSearchCount   = 10
	defaultSearchCountry = "IT"
)

// SourceReader implements ports.SourceReader by fetching a source and
// handing the payload to the parser its Kind resolved to.
type SourceReader struct {
	fetcher ports.Fetcher
	logger  *slog.Logger
}

var _ ports.SourceReader = (*SourceReader)(nil)

// NewSourceReader wires the fetch adapter into the parser dispatch.
func NewSourceReader(fetcher ports.Fetcher, log *slog.Logger) *SourceReader {
	return &SourceReader{
		fetcher: fetcher,
		logger:  log,
	}
}

// News reads a news source. Search sources use the URL field as the query.
func (s *SourceReader) News(ctx context.Context, req scanner.Request, src config.Source) ([]domain.NewsItem, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("fetcher is not configured")
	}
	s.debug("read news source", "section", req.Section, "source", src.Name, "kind", src.Kind)

	switch src.Kind {
	case scanner.KindRSSNews:
		body, err := s.fetcher.Text(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src.Name, err)
		}
		return ParseRSSNews(req, body)
	case scanner.KindJSONNews:
		payload, err := s.fetcher.JSON(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src.Name, err)
		}
		return ParseJSONNews(req, payload), nil
	case scanner.KindSearchNews:
		count := src.Count
		if count <= 0 {
			count = defaultSearchCount
		}
		country := src.Country
		if country == "" {
			country = defaultSearchCountry
		}
		results, err := s.fetcher.Search(ctx, strings.TrimSpace(src.URL), count, country)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", src.Name, err)
		}
		return ParseSearchNews(req, results), nil
	default:
		return nil, fmt.Errorf("source %s: %w: %s is not a news kind", src.Name, scanner.ErrUnsupported, src.Kind)
	}
}

// Strikes reads a strike source.
func (s *SourceReader) Strikes(ctx context.Context, req scanner.Request, src config.Source) ([]domain.StrikeItem, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("fetcher is not configured")
	}
	s.debug("read strike source", "source", src.Name, "kind", src.Kind)

	switch src.Kind {
	case scanner.KindJSONStrikes:
		payload, err := s.fetcher.JSON(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src.Name, err)
		}
		return ParseJSONStrikes(req, payload), nil
	case scanner.KindRSSStrikes:
		body, err := s.fetcher.Text(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src.Name, err)
		}
		return ParseRSSStrikes(req, body)
	case scanner.KindHTMLStrikes:
		body, err := s.fetcher.Text(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src.Name, err)
		}
		return ParseHTMLStrikes(req, body), nil
	default:
		return nil, fmt.Errorf("source %s: %w: %s is not a strike kind", src.Name, scanner.ErrUnsupported, src.Kind)
	}
}

func (s *SourceReader) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
