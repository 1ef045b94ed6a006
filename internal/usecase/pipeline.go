package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"NewsBriefing/internal/config"
	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/logging"
	"NewsBriefing/internal/ports"
	"NewsBriefing/internal/scanner"
)

const (
	defaultNewsCount = 5
	reportDateLayout = "2006-01-02"
)

// Strikes are kept when their city hint mentions one of these, or is empty.
var strikeCityHints = []string{"milan", "milano", "lombardia", "italia", "tutte"}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Reader   ports.SourceReader
	Store    ports.DedupStore
	Weather  ports.WeatherProvider
	Renderer ports.Renderer
	Writer   ports.ArtifactWriter
	Clock    func() time.Time
	Logger   *slog.Logger
}

// Pipeline implements the daily briefing workflow.
type Pipeline struct {
	reader   ports.SourceReader
	store    ports.DedupStore
	weather  ports.WeatherProvider
	renderer ports.Renderer
	writer   ports.ArtifactWriter
	clock    func() time.Time
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		reader:   deps.Reader,
		store:    deps.Store,
		weather:  deps.Weather,
		renderer: deps.Renderer,
		writer:   deps.Writer,
		clock:    clock,
		logger:   logger,
	}
}

// RunOptions tunes one execution.
type RunOptions struct {
	// ReportDay defaults to today in the configured zone.
	ReportDay time.Time
	// DryRun renders without writing artifacts or touching the store.
	DryRun bool
	// Layout and SectionOrder override the render config when set.
	Layout       string
	SectionOrder []string
}

// RunResult describes what one execution produced.
type RunResult struct {
	InvocationID string
	Brief        domain.DailyBrief
	Text         string
	RunID        int64
	TextPath     string
	JSONPath     string
}

// Run fetches every section, filters and dedups it, renders the brief and,
// unless DryRun, persists the artifacts and the run. Source failures only
// shrink the output; weather, render and store failures abort the run.
func (p *Pipeline) Run(ctx context.Context, cfg config.Config, opts RunOptions) (RunResult, error) {
	if p.reader == nil || p.weather == nil || p.renderer == nil {
		return RunResult{}, fmt.Errorf("pipeline is not fully configured")
	}
	if !opts.DryRun && (p.store == nil || p.writer == nil) {
		return RunResult{}, fmt.Errorf("pipeline has no store or writer for a persisted run")
	}

	loc := cfg.Location()
	now := p.clock().In(loc)
	reportDay := opts.ReportDay
	if reportDay.IsZero() {
		reportDay = now
	}
	reportDay = startOfDay(reportDay, loc)
	reportDate := reportDay.Format(reportDateLayout)

	invocationID := uuid.NewString()
	log := p.logger.With("invocation_id", invocationID, "report_date", reportDate)
	log.Info("pipeline started", "dry_run", opts.DryRun)

	weather, err := p.weather.Forecast(ctx, reportDay)
	if err != nil {
		return RunResult{}, fmt.Errorf("fetch weather: %w", err)
	}

	brief := domain.DailyBrief{
		ReportDate: reportDate,
		Weather:    weather,
		Strikes:    p.collectStrikes(ctx, cfg, reportDay, now, log),
	}

	shown := make(map[string]struct{})
	for _, section := range domain.NewsSections {
		items, err := p.collectNews(ctx, cfg, section, reportDay, now, shown, log)
		if err != nil {
			return RunResult{}, fmt.Errorf("collect %s: %w", section, err)
		}
		brief.SetNews(section, items)
	}

	layout := opts.Layout
	if layout == "" {
		layout = cfg.Render.DefaultLayout
	}
	order := opts.SectionOrder
	if len(order) == 0 {
		order = cfg.Render.SectionOrder
	}

	text, err := p.renderer.Render(brief, layout, order)
	if err != nil {
		return RunResult{}, fmt.Errorf("render brief: %w", err)
	}

	result := RunResult{InvocationID: invocationID, Brief: brief, Text: text}
	if opts.DryRun {
		log.Info("dry run finished", "counts", countsOf(brief))
		return result, nil
	}

	result.TextPath, result.JSONPath, err = p.writer.Write(ctx, brief, text)
	if err != nil {
		return RunResult{}, fmt.Errorf("write artifacts: %w", err)
	}
	briefPath := result.TextPath
	if briefPath == "" {
		briefPath = result.JSONPath
	}

	meta := domain.RunMeta{
		InvocationID:   invocationID,
		Counts:         countsOf(brief),
		Layout:         layout,
		SectionOrder:   order,
		OutputMarkdown: result.TextPath,
		OutputJSON:     result.JSONPath,
	}
	result.RunID, err = p.store.CreateRun(ctx, reportDate, briefPath, meta)
	if err != nil {
		return RunResult{}, fmt.Errorf("create run: %w", err)
	}
	for _, item := range brief.AllNews() {
		if err := p.store.RecordItem(ctx, result.RunID, reportDate, item); err != nil {
			return RunResult{}, fmt.Errorf("record item: %w", err)
		}
	}

	log.Info("pipeline finished", "run_id", result.RunID, "brief_path", briefPath, "counts", meta.Counts)
	return result, nil
}

// collectStrikes merges every strike source, keeps Milan-relevant strikes
// starting within the lookahead window and sorts them by start.
func (p *Pipeline) collectStrikes(ctx context.Context, cfg config.Config, reportDay, now time.Time, log *slog.Logger) []domain.StrikeItem {
	loc := cfg.Location()
	lookahead := max(cfg.Strikes.LookaheadDays, 0)
	last := reportDay.AddDate(0, 0, lookahead)

	out := make([]domain.StrikeItem, 0)
	for _, src := range cfg.Strikes.Sources {
		if src.URL == "" {
			log.Debug("strike source has no url, skipped", "source", src.Name)
			continue
		}
		req := scanner.Request{Section: domain.SectionStrikes, SourceName: src.Name, Location: loc, Now: now}
		items, err := p.reader.Strikes(ctx, req, src)
		if err != nil {
			log.Warn("strike source failed", "section", domain.SectionStrikes, "source", src.Name, "error", err)
			continue
		}

		kept := 0
		for _, item := range items {
			if item.Start == nil {
				continue
			}
			day := startOfDay(*item.Start, loc)
			if day.Before(reportDay) || day.After(last) {
				continue
			}
			if !relevantCity(item.City) {
				continue
			}
			out = append(out, item)
			kept++
		}
		log.Debug("strike source read", "source", src.Name, "parsed", len(items), "kept", kept)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(*out[j].Start)
	})
	log.Info("strikes collected", "count", len(out))
	return out
}

// collectNews merges a section's sources, applies recency and dedup, sorts
// newest first with undated items last and truncates to the section count.
// shown holds fingerprints already placed in this run.
func (p *Pipeline) collectNews(ctx context.Context, cfg config.Config, section domain.Section, reportDay, now time.Time, shown map[string]struct{}, log *slog.Logger) ([]domain.NewsItem, error) {
	sec := cfg.Section(section)
	loc := cfg.Location()

	out := make([]domain.NewsItem, 0)
	for _, src := range sec.Sources {
		if src.URL == "" {
			log.Debug("news source has no url, skipped", "section", section, "source", src.Name)
			continue
		}
		req := scanner.Request{Section: section, SourceName: src.Name, Location: loc, Now: now}
		items, err := p.reader.News(ctx, req, src)
		if err != nil {
			log.Warn("news source failed", "section", section, "source", src.Name, "error", err)
			continue
		}

		kept := 0
		for _, item := range items {
			if !IsRecent(item.PublishedAt, reportDay, loc, sec.OnlyToday, sec.FallbackDays) {
				continue
			}
			key := item.Fingerprint()
			if _, dup := shown[key]; dup {
				continue
			}
			if p.store != nil {
				seen, err := p.store.HasSeen(ctx, item)
				if err != nil {
					return nil, err
				}
				if seen {
					continue
				}
			}
			shown[key] = struct{}{}
			out = append(out, item)
			kept++
		}
		log.Debug("news source read", "section", section, "source", src.Name, "parsed", len(items), "kept", kept)
	}

	sortNewestFirst(out)

	count := sec.Count
	if count <= 0 {
		count = defaultNewsCount
	}
	if len(out) > count {
		for _, dropped := range out[count:] {
			delete(shown, dropped.Fingerprint())
		}
		out = out[:count]
	}
	log.Info("section collected", "section", section, "count", len(out))
	return out, nil
}

func sortNewestFirst(items []domain.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

func relevantCity(city string) bool {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return true
	}
	for _, hint := range strikeCityHints {
		if strings.Contains(city, hint) {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func countsOf(brief domain.DailyBrief) map[string]int {
	counts := map[string]int{string(domain.SectionStrikes): len(brief.Strikes)}
	for _, section := range domain.NewsSections {
		counts[string(section)] = len(brief.News(section))
	}
	return counts
}
