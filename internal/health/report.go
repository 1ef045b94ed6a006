package health

import "NewsBriefing/internal/domain"

// Result is the probe outcome of one configured source.
type Result struct {
	Section    string `json:"section"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	URL        string `json:"url"`
	OK         bool   `json:"ok"`
	Detail     string `json:"detail"`
	StatusCode *int   `json:"status_code"`
}

// SectionSummary counts healthy sources of one section.
type SectionSummary struct {
	OK    int `json:"ok"`
	Total int `json:"total"`
}

// Summary aggregates a report.
type Summary struct {
	Total     int                       `json:"total"`
	OK        int                       `json:"ok"`
	Failed    int                       `json:"failed"`
	BySection map[string]SectionSummary `json:"by_section"`
}

// Report is the full health check output.
type Report struct {
	Summary Summary  `json:"summary"`
	Results []Result `json:"results"`
}

// Healthy reports whether every probed source passed.
func (r Report) Healthy() bool {
	return r.Summary.Failed == 0
}

// Failures returns the failed results in probe order.
func (r Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK {
			out = append(out, res)
		}
	}
	return out
}

// NewReport builds the summary from results. Every section appears in
// BySection even when it has no sources.
func NewReport(results []Result) Report {
	summary := Summary{BySection: make(map[string]SectionSummary, len(domain.AllSections))}
	for _, s := range domain.AllSections {
		summary.BySection[string(s)] = SectionSummary{}
	}

	for _, res := range results {
		sec := summary.BySection[res.Section]
		sec.Total++
		summary.Total++
		if res.OK {
			sec.OK++
			summary.OK++
		}
		summary.BySection[res.Section] = sec
	}
	summary.Failed = summary.Total - summary.OK

	if results == nil {
		results = []Result{}
	}
	return Report{Summary: summary, Results: results}
}

type sourceKey struct {
	section string
	name    string
	url     string
}
