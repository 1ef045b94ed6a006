package domain

// Run is the append-only log entry of one persisted pipeline execution.
type Run struct {
	ID         int64  `db:"id"`
	ReportDate string `db:"report_date"`
	CreatedAt  string `db:"created_at"`
	BriefPath  string `db:"brief_path"`
	MetaJSON   string `db:"meta_json"`
}

// SeenItem is the first-seen snapshot of a fingerprint.
type SeenItem struct {
	Key           string  `db:"item_key"`
	Section       string  `db:"section"`
	Title         string  `db:"title"`
	URL           string  `db:"url"`
	Source        string  `db:"source"`
	PublishedAt   *string `db:"published_at"`
	FirstSeenDate string  `db:"first_seen_date"`
	LastSeenDate  string  `db:"last_seen_date"`
}

// RunItem links a run to an item it included.
type RunItem struct {
	RunID       int64   `db:"run_id"`
	Section     string  `db:"section"`
	Title       string  `db:"title"`
	URL         string  `db:"url"`
	Source      string  `db:"source"`
	PublishedAt *string `db:"published_at"`
	Key         string  `db:"item_key"`
}

// RunMeta is serialized into Run.MetaJSON.
type RunMeta struct {
	InvocationID   string         `json:"invocation_id,omitempty"`
	Counts         map[string]int `json:"counts"`
	Layout         string         `json:"layout"`
	SectionOrder   []string       `json:"section_order"`
	OutputMarkdown string         `json:"output_markdown,omitempty"`
	OutputJSON     string         `json:"output_json,omitempty"`
}

// Alert is an operational notification about a daily run.
type Alert struct {
	Status        string `json:"status"`
	Attempt       int    `json:"attempt"`
	AttemptsTotal int    `json:"attempts_total"`
	Date          string `json:"date"`
	ConfigUsed    string `json:"config_used"`
	Precheck      any    `json:"precheck,omitempty"`
	Error         string `json:"error,omitempty"`
}
