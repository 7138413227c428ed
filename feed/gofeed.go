package feed

import (
	"strings"

	"github.com/mmcdole/gofeed"

	"rental-aggregator/models"
)

// GofeedParser parses documents with a conformant RSS/Atom parser. It is
// stricter than RegexParser: a document that is not well-formed XML yields
// no items at all.
type GofeedParser struct {
	parser *gofeed.Parser
}

// NewGofeedParser creates a GofeedParser.
func NewGofeedParser() *GofeedParser {
	return &GofeedParser{parser: gofeed.NewParser()}
}

// Parse implements Parser.
func (p *GofeedParser) Parse(doc string) []models.FeedItem {
	if strings.TrimSpace(doc) == "" {
		return nil
	}

	parsed, err := p.parser.ParseString(doc)
	if err != nil || parsed == nil {
		return nil
	}

	items := make([]models.FeedItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		rawDescription := strings.TrimSpace(DecodeEntities(item.Description))
		items = append(items, models.FeedItem{
			Title:          strings.TrimSpace(DecodeEntities(item.Title)),
			Link:           strings.TrimSpace(item.Link),
			Description:    StripMarkup(rawDescription),
			RawDescription: rawDescription,
			PubDate:        strings.TrimSpace(item.Published),
			Enclosure:      enclosureOf(item),
		})
	}
	return items
}

func enclosureOf(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	if media, ok := item.Extensions["media"]; ok {
		for _, content := range media["content"] {
			if u := content.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	return ""
}
