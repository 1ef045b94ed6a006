package domain

// Section identifies one fixed content category of the brief.
type Section string

const (
	SectionStrikes     Section = "strikes"
	SectionItalianNews Section = "italian_news"
	SectionWorldNews   Section = "world_news"
	SectionAINews      Section = "ai_news"
	SectionMilanEvents Section = "milan_events"
)

// NewsSections lists the news sections in brief order.
var NewsSections = []Section{
	SectionItalianNews,
	SectionWorldNews,
	SectionAINews,
	SectionMilanEvents,
}

// AllSections lists every configurable section, strikes first.
var AllSections = append([]Section{SectionStrikes}, NewsSections...)

// IsNews reports whether the section carries NewsItem records.
func (s Section) IsNews() bool {
	for _, n := range NewsSections {
		if n == s {
			return true
		}
	}
	return false
}
