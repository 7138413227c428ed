package feed

import (
	"fmt"
	"regexp"
	"strings"

	"rental-aggregator/models"
)

// Parser turns a raw syndication document into items in document order.
// Implementations never fail: an empty or malformed document yields no items.
type Parser interface {
	Parse(doc string) []models.FeedItem
}

const (
	KindRegex  = "regex"
	KindGofeed = "gofeed"
)

// NewParser returns the parser registered under kind.
func NewParser(kind string) (Parser, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindRegex:
		return NewRegexParser(), nil
	case KindGofeed:
		return NewGofeedParser(), nil
	default:
		return nil, fmt.Errorf("feed: unknown parser %q", kind)
	}
}

var (
	itemRegexp      = regexp.MustCompile(`(?i)<item(?:\s[^>]*)?>[\s\S]*?</item>`)
	enclosureRegexp = regexp.MustCompile(`(?i)<enclosure[^>]*url="([^"]+)"[^>]*>`)
	mediaRegexp     = regexp.MustCompile(`(?i)<media:content[^>]*url="([^"]+)"[^>]*>`)

	fieldRegexps = map[string]*regexp.Regexp{
		"title":       fieldRegexp("title"),
		"link":        fieldRegexp("link"),
		"description": fieldRegexp("description"),
		"pubDate":     fieldRegexp("pubDate"),
	}
)

func fieldRegexp(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<` + tag + `(?:\s[^>]*)?>([\s\S]*?)</` + tag + `>`)
}

// RegexParser scans item blocks with regular expressions. It tolerates the
// partially malformed markup real listing feeds serve, which a strict XML
// decoder rejects outright.
type RegexParser struct{}

// NewRegexParser creates a RegexParser.
func NewRegexParser() *RegexParser {
	return &RegexParser{}
}

// Parse implements Parser.
func (p *RegexParser) Parse(doc string) []models.FeedItem {
	if doc == "" {
		return nil
	}

	blocks := itemRegexp.FindAllString(doc, -1)
	items := make([]models.FeedItem, 0, len(blocks))
	for _, block := range blocks {
		rawDescription := extractField(block, "description")
		items = append(items, models.FeedItem{
			Title:          extractField(block, "title"),
			Link:           extractField(block, "link"),
			Description:    StripMarkup(rawDescription),
			RawDescription: rawDescription,
			PubDate:        extractField(block, "pubDate"),
			Enclosure:      extractEnclosureURL(block),
		})
	}
	return items
}

func extractField(block, tag string) string {
	m := fieldRegexps[tag].FindStringSubmatch(block)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(DecodeEntities(m[1]))
}

func extractEnclosureURL(block string) string {
	if m := enclosureRegexp.FindStringSubmatch(block); len(m) == 2 {
		return m[1]
	}
	if m := mediaRegexp.FindStringSubmatch(block); len(m) == 2 {
		return m[1]
	}
	return ""
}
