package domain

// SourceType is the declared content kind of a configured source.
type SourceType string

const (
	SourceRSS    SourceType = "rss"
	SourceJSON   SourceType = "json"
	SourceHTML   SourceType = "html"
	SourceSearch SourceType = "search"
)

// SourceSpec describes one feed. For search sources URL holds the query.
type SourceSpec struct {
	Name    string     `yaml:"name" json:"name"`
	Type    SourceType `yaml:"type" json:"type"`
	URL     string     `yaml:"url" json:"url"`
	Parser  string     `yaml:"parser,omitempty" json:"parser,omitempty"`
	Count   int        `yaml:"count,omitempty" json:"count,omitempty"`
	Country string     `yaml:"country,omitempty" json:"country,omitempty"`
}

// SearchResult is the canonical shape returned by every search backend.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
