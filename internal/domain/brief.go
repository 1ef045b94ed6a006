package domain

// WeatherInfo is a single-day forecast snapshot.
type WeatherInfo struct {
	City                        string   `json:"city"`
	DateLabel                   string   `json:"date_label"`
	TemperatureMin              *float64 `json:"temperature_min"`
	TemperatureMax              *float64 `json:"temperature_max"`
	Condition                   string   `json:"condition"`
	PrecipitationProbabilityMax *float64 `json:"precipitation_probability_max"`
}

// DailyBrief is the aggregate handed to rendering and persistence.
type DailyBrief struct {
	ReportDate  string       `json:"report_date"`
	Weather     WeatherInfo  `json:"weather"`
	Strikes     []StrikeItem `json:"strikes"`
	ItalianNews []NewsItem   `json:"italian_news"`
	WorldNews   []NewsItem   `json:"world_news"`
	AINews      []NewsItem   `json:"ai_news"`
	MilanEvents []NewsItem   `json:"milan_events"`
}

// News returns the items of a news section, nil for anything else.
func (b DailyBrief) News(section Section) []NewsItem {
	switch section {
	case SectionItalianNews:
		return b.ItalianNews
	case SectionWorldNews:
		return b.WorldNews
	case SectionAINews:
		return b.AINews
	case SectionMilanEvents:
		return b.MilanEvents
	}
	return nil
}

// AllNews concatenates the news sections in brief order.
func (b DailyBrief) AllNews() []NewsItem {
	var out []NewsItem
	for _, s := range NewsSections {
		out = append(out, b.News(s)...)
	}
	return out
}

// SetNews stores items under a news section. Unknown sections are ignored.
func (b *DailyBrief) SetNews(section Section, items []NewsItem) {
	switch section {
	case SectionItalianNews:
		b.ItalianNews = items
	case SectionWorldNews:
		b.WorldNews = items
	case SectionAINews:
		b.AINews = items
	case SectionMilanEvents:
		b.MilanEvents = items
	}
}
