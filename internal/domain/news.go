package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// NewsItem is one reported article or event.
// Extra carries format-specific metadata and is ignored by dedup and filtering.
type NewsItem struct {
	Section     Section        `json:"section"`
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	Source      string         `json:"source"`
	PublishedAt *time.Time     `json:"published_at"`
	Summary     string         `json:"summary,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Fingerprint returns the cross-run identity of the item.
func (n NewsItem) Fingerprint() string {
	return Fingerprint(n.Title, n.URL, n.Source)
}

// StrikeItem is one labor action affecting transport.
type StrikeItem struct {
	Title        string     `json:"title"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
	ImpactWindow string     `json:"impact_window,omitempty"`
	City         string     `json:"city,omitempty"`
}

// Fingerprint hashes the normalized (title, url, source) triple.
// Title and source are trimmed and case-folded, the URL is only trimmed.
func Fingerprint(title, url, source string) string {
	raw := strings.ToLower(strings.TrimSpace(title)) + "||" +
		strings.TrimSpace(url) + "||" +
		strings.ToLower(strings.TrimSpace(source))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
