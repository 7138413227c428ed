// Package craigslist queries the Craigslist apartment RSS search once and
// assigns each item to the first requested region it mentions.
package craigslist

import (
	"context"
	"fmt"
	"net/url"

	"rental-aggregator/feed"
	"rental-aggregator/models"
	"rental-aggregator/scraper"
	"rental-aggregator/services"
	"rental-aggregator/utils"
)

const (
	defaultBaseURL = "https://toronto.craigslist.org/search/apa"
	searchQuery    = "1+den parking"
)

// Scraper runs a single combined query.
type Scraper struct {
	baseURL string
	source  scraper.FeedSource
	parser  feed.Parser
	logger  *utils.Logger
}

// New creates a Craigslist scraper against the public search endpoint.
func New(source scraper.FeedSource, parser feed.Parser, logger *utils.Logger) *Scraper {
	return NewWithBaseURL(defaultBaseURL, source, parser, logger)
}

// NewWithBaseURL creates a Craigslist scraper against baseURL.
func NewWithBaseURL(baseURL string, source scraper.FeedSource, parser feed.Parser, logger *utils.Logger) *Scraper {
	return &Scraper{baseURL: baseURL, source: source, parser: parser, logger: logger}
}

// Run implements scraper.RunFunc.
func (s *Scraper) Run(ctx context.Context, maxRent int, regions []string) ([]models.RawCandidate, error) {
	doc := s.source.Fetch(ctx, s.QueryURL(maxRent), "craigslist")
	items := s.parser.Parse(doc)
	s.logger.Debug("[craigslist] %d items", len(items))

	out := make([]models.RawCandidate, 0, len(items))
	for _, item := range items {
		city, neighborhood := scraper.FallbackRegion, ""
		if region, ok := services.MatchRegion(regions, item.Title, item.Description); ok {
			city, neighborhood = region, region
		}
		out = append(out, scraper.ItemCandidate(item, city, neighborhood))
	}
	return out, nil
}

// QueryURL builds the search feed URL.
func (s *Scraper) QueryURL(maxRent int) string {
	return fmt.Sprintf("%s?availabilityMode=0&format=rss&max_price=%d&query=%s",
		s.baseURL, maxRent, url.QueryEscape(searchQuery))
}
