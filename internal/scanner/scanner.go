package scanner

import (
	"errors"
	"fmt"
	"time"

	"NewsBriefing/internal/domain"
)

// Kind is one (content kind, parser key) variant. The set is closed.
type Kind int

const (
	KindUnknown Kind = iota
	KindRSSNews
	KindJSONNews
	KindSearchNews
	KindJSONStrikes
	KindRSSStrikes
	KindHTMLStrikes
)

// Parser keys accepted in configuration.
const (
	ParserGenericJSONNews    = "generic_json_news_v1"
	ParserItalyTransportJSON = "italy_transport_strikes_v1"
	ParserItalyMITRSS        = "italy_mit_strikes_rss_v1"
	ParserItalyMITHTML       = "italy_mit_strikes_html_v1"
)

// ErrUnsupported is returned for a (section, type, parser) triple with no variant.
var ErrUnsupported = errors.New("unsupported source parser")

type variant struct {
	strikes bool
	typ     domain.SourceType
	parser  string
}

var variants = map[variant]Kind{
	{false, domain.SourceRSS, ""}:                       KindRSSNews,
	{false, domain.SourceJSON, ""}:                      KindJSONNews,
	{false, domain.SourceJSON, ParserGenericJSONNews}:   KindJSONNews,
	{false, domain.SourceSearch, ""}:                    KindSearchNews,
	{true, domain.SourceJSON, ""}:                       KindJSONStrikes,
	{true, domain.SourceJSON, ParserItalyTransportJSON}: KindJSONStrikes,
	{true, domain.SourceRSS, ""}:                        KindRSSStrikes,
	{true, domain.SourceRSS, ParserItalyMITRSS}:         KindRSSStrikes,
	{true, domain.SourceHTML, ""}:                       KindHTMLStrikes,
	{true, domain.SourceHTML, ParserItalyMITHTML}:       KindHTMLStrikes,
}

// Resolve maps a configured source to its parser variant.
func Resolve(section domain.Section, src domain.SourceSpec) (Kind, error) {
	key := variant{strikes: section == domain.SectionStrikes, typ: src.Type, parser: src.Parser}
	if kind, ok := variants[key]; ok {
		return kind, nil
	}
	return KindUnknown, fmt.Errorf("%w: section=%s type=%s parser=%q", ErrUnsupported, section, src.Type, src.Parser)
}

// Strikes reports whether the variant yields StrikeItem records.
func (k Kind) Strikes() bool {
	return k == KindJSONStrikes || k == KindRSSStrikes || k == KindHTMLStrikes
}

func (k Kind) String() string {
	switch k {
	case KindRSSNews:
		return "rss_news"
	case KindJSONNews:
		return "json_news"
	case KindSearchNews:
		return "search_news"
	case KindJSONStrikes:
		return "json_strikes"
	case KindRSSStrikes:
		return "rss_strikes"
	case KindHTMLStrikes:
		return "html_strikes"
	default:
		return "unknown"
	}
}

// Request carries everything a parser needs besides the payload.
type Request struct {
	Section    domain.Section
	SourceName string
	Location   *time.Location
	// Now stamps records that carry no native timestamp.
	Now time.Time
}
