package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/ports"
)

// Layout names accepted by Markdown.Render.
const (
	LayoutClassic   = "classic"
	LayoutEditorial = "editorial"
	LayoutBrief     = "brief"
)

// SectionWeather is the render-only section key for the forecast block.
const SectionWeather = "weather"

// ErrUnknownLayout is returned for a layout name outside the known set.
var ErrUnknownLayout = errors.New("unknown layout")

// DefaultOrder is the section order used when none is configured.
var DefaultOrder = []string{
	SectionWeather,
	string(domain.SectionStrikes),
	string(domain.SectionItalianNews),
	string(domain.SectionWorldNews),
	string(domain.SectionAINews),
	string(domain.SectionMilanEvents),
}

// Layouts lists the supported layout names.
func Layouts() []string {
	return []string{LayoutClassic, LayoutEditorial, LayoutBrief}
}

// Markdown renders a DailyBrief into a markdown document.
type Markdown struct {
	lookaheadDays int
	location      *time.Location
	now           func() time.Time
}

var _ ports.Renderer = (*Markdown)(nil)

// NewMarkdown builds a renderer. now stamps the footer.
func NewMarkdown(lookaheadDays int, loc *time.Location, now func() time.Time) *Markdown {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Markdown{lookaheadDays: lookaheadDays, location: loc, now: now}
}

// Render lays the brief out. An empty order means DefaultOrder.
func (m *Markdown) Render(brief domain.DailyBrief, layout string, order []string) (string, error) {
	if len(order) == 0 {
		order = DefaultOrder
	}
	if layout == "" {
		layout = LayoutClassic
	}

	var b strings.Builder
	switch layout {
	case LayoutClassic:
		fmt.Fprintf(&b, "# Milan Daily Briefing | %s\n\n", brief.ReportDate)
		for i, section := range order {
			m.section(&b, brief, section, fmt.Sprintf("%d) ", i+1), false)
		}
	case LayoutEditorial:
		fmt.Fprintf(&b, "# Milan Briefing Desk | %s\n\n", brief.ReportDate)
		b.WriteString("## At a glance\n")
		fmt.Fprintf(&b, "- Strikes: %d\n", len(brief.Strikes))
		fmt.Fprintf(&b, "- Italian headlines: %d\n", len(brief.ItalianNews))
		fmt.Fprintf(&b, "- World headlines: %d\n", len(brief.WorldNews))
		fmt.Fprintf(&b, "- AI headlines: %d\n", len(brief.AINews))
		fmt.Fprintf(&b, "- Milan events: %d\n\n", len(brief.MilanEvents))
		for _, section := range order {
			m.section(&b, brief, section, "", false)
		}
	case LayoutBrief:
		fmt.Fprintf(&b, "# Milan Brief | %s\n\n", brief.ReportDate)
		for _, section := range order {
			m.section(&b, brief, section, "", true)
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLayout, layout)
	}

	fmt.Fprintf(&b, "_Generated at %s_", m.now().In(m.location).Format("2006-01-02T15:04:05"))
	return b.String(), nil
}

func (m *Markdown) label(section string) string {
	switch section {
	case SectionWeather:
		return "Weather in Milan"
	case string(domain.SectionStrikes):
		return fmt.Sprintf("Strikes in Milan, next %d days", m.lookaheadDays)
	case string(domain.SectionItalianNews):
		return "Italian press (today)"
	case string(domain.SectionWorldNews):
		return "World news"
	case string(domain.SectionAINews):
		return "AI research"
	case string(domain.SectionMilanEvents):
		return "Upcoming in Milan"
	}
	return section
}

func (m *Markdown) section(b *strings.Builder, brief domain.DailyBrief, section, prefix string, compact bool) {
	fmt.Fprintf(b, "## %s%s\n", prefix, m.label(section))

	switch {
	case section == SectionWeather:
		w := brief.Weather
		condition := w.Condition
		if condition == "" {
			condition = "unknown"
		}
		fmt.Fprintf(b, "- Date: %s\n", w.DateLabel)
		fmt.Fprintf(b, "- Temperature: %s ~ %s\n", temperature(w.TemperatureMin), temperature(w.TemperatureMax))
		fmt.Fprintf(b, "- Conditions: %s\n", condition)
		fmt.Fprintf(b, "- Max precipitation chance: %s\n", percent(w.PrecipitationProbabilityMax))
	case section == string(domain.SectionStrikes):
		m.strikes(b, brief.Strikes, compact)
	case domain.Section(section).IsNews():
		m.news(b, brief.News(domain.Section(section)), compact)
	default:
		fmt.Fprintf(b, "- Unknown section: %s\n", section)
	}
	b.WriteString("\n")
}

func (m *Markdown) strikes(b *strings.Builder, items []domain.StrikeItem, compact bool) {
	if len(items) == 0 {
		fmt.Fprintf(b, "- No confirmed strikes in the next %d days.\n", m.lookaheadDays)
		return
	}
	for i, s := range items {
		start, end := m.stamp(s.Start, "unknown"), m.stamp(s.End, "unknown")
		city := s.City
		if city == "" {
			city = "city not given"
		}
		if compact {
			fmt.Fprintf(b, "- %d. %s (%s ~ %s, %s)\n", i+1, s.Title, start, end, city)
			continue
		}
		impact := s.ImpactWindow
		if impact == "" {
			impact = "not given"
		}
		fmt.Fprintf(b, "- %d. %s | City: %s | Dates: %s ~ %s | Impact: %s\n", i+1, s.Title, city, start, end, impact)
	}
}

func (m *Markdown) news(b *strings.Builder, items []domain.NewsItem, compact bool) {
	if len(items) == 0 {
		b.WriteString("- Nothing new today.\n")
		return
	}
	for i, it := range items {
		if compact {
			fmt.Fprintf(b, "- %d. [%s](%s) (%s)\n", i+1, it.Title, it.URL, it.Source)
			continue
		}
		fmt.Fprintf(b, "- %d. [%s](%s) (%s, %s)\n", i+1, it.Title, it.URL, it.Source, m.stamp(it.PublishedAt, "time unknown"))
	}
}

func (m *Markdown) stamp(t *time.Time, missing string) string {
	if t == nil {
		return missing
	}
	return t.In(m.location).Format("2006-01-02T15:04")
}

func temperature(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.1f°C", *v)
}

func percent(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.0f%%", *v)
}

// ValidateOrder rejects section names the renderer does not know.
func ValidateOrder(order []string) error {
	for _, section := range order {
		if section == SectionWeather || section == string(domain.SectionStrikes) || domain.Section(section).IsNews() {
			continue
		}
		return fmt.Errorf("unknown section %q", section)
	}
	return nil
}
