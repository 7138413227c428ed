package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FirstText returns the trimmed, whitespace-collapsed text of the first
// selector that matches something non-empty inside sel.
func FirstText(sel *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		text := strings.Join(strings.Fields(sel.Find(s).First().Text()), " ")
		if text != "" {
			return text
		}
	}
	return ""
}

// FirstAttr returns the first non-empty attr value among selectors.
func FirstAttr(sel *goquery.Selection, attr string, selectors ...string) string {
	for _, s := range selectors {
		if v, ok := sel.Find(s).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// FindCards returns the matches of the first card selector that finds any.
func FindCards(doc *goquery.Document, selectors ...string) *goquery.Selection {
	for _, s := range selectors {
		if cards := doc.Find(s); cards.Length() > 0 {
			return cards
		}
	}
	return doc.Find("__none__")
}

// AbsoluteURL resolves href against base. Unparseable input yields "".
func AbsoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(ref).String()
}
