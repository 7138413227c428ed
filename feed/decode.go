// Package feed turns syndication documents into FeedItem values.
package feed

import (
	"regexp"
	"strings"
)

var (
	cdataRegexp      = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	tagRegexp        = regexp.MustCompile(`<[^>]+>`)
	strayAngleRegexp = regexp.MustCompile(`[<>]`)

	// entities are applied in order, "&amp;" first.
	entities = [][2]string{
		{"&amp;", "&"},
		{"&lt;", "<"},
		{"&gt;", ">"},
		{"&quot;", `"`},
		{"&#39;", "'"},
	}
)

// DecodeEntities unwraps CDATA sections and decodes the five standard XML
// entities. Replacements are chained, so a doubly escaped "&amp;lt;" also
// ends up as "<".
func DecodeEntities(text string) string {
	if text == "" {
		return ""
	}
	text = cdataRegexp.ReplaceAllString(text, "${1}")
	for _, e := range entities {
		text = strings.ReplaceAll(text, e[0], e[1])
	}
	return text
}

// StripMarkup decodes entities, replaces every tag with a space and collapses
// whitespace, Unicode spaces included. The result never contains '<' or '>'.
func StripMarkup(text string) string {
	text = DecodeEntities(text)
	text = tagRegexp.ReplaceAllString(text, " ")
	text = strayAngleRegexp.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}
