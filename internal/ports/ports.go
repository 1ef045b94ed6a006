package ports

import (
	"context"
	"time"

	"NewsBriefing/internal/config"
	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/scanner"
)

// Fetcher performs the network I/O for every source kind.
type Fetcher interface {
	Text(ctx context.Context, url string) (string, error)
	JSON(ctx context.Context, url string) (any, error)
	Search(ctx context.Context, query string, count int, country string) ([]domain.SearchResult, error)
}

// SourceReader fetches one configured source and parses it into records.
type SourceReader interface {
	News(ctx context.Context, req scanner.Request, src config.Source) ([]domain.NewsItem, error)
	Strikes(ctx context.Context, req scanner.Request, src config.Source) ([]domain.StrikeItem, error)
}

// Prober reads the head of a URL for health checks, whatever its status.
type Prober interface {
	Peek(ctx context.Context, url string, limit int64) (int, []byte, error)
}

// DedupStore is the sole owner of seen items, runs and run items.
type DedupStore interface {
	HasSeen(ctx context.Context, item domain.NewsItem) (bool, error)
	CreateRun(ctx context.Context, reportDate, briefPath string, meta domain.RunMeta) (int64, error)
	RecordItem(ctx context.Context, runID int64, reportDate string, item domain.NewsItem) error
}

// WeatherProvider returns the forecast for the report day.
type WeatherProvider interface {
	Forecast(ctx context.Context, day time.Time) (domain.WeatherInfo, error)
}

// Renderer turns a brief into text.
type Renderer interface {
	Render(brief domain.DailyBrief, layout string, order []string) (string, error)
}

// ArtifactWriter persists the rendered brief and its structured mirror.
type ArtifactWriter interface {
	Write(ctx context.Context, brief domain.DailyBrief, text string) (textPath, jsonPath string, err error)
}

// Notifier delivers operational alerts (webhook, Telegram, etc.).
type Notifier interface {
	Notify(ctx context.Context, alert domain.Alert) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
