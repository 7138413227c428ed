// Package kijiji queries the Kijiji rental RSS feed once per region.
package kijiji

import (
	"context"
	"fmt"
	"net/url"

	"rental-aggregator/feed"
	"rental-aggregator/models"
	"rental-aggregator/scraper"
	"rental-aggregator/utils"
)

const defaultBaseURL = "https://www.kijiji.ca/rss-srp-apartments-condos/gta-greater-toronto-area/1+den__1+1/k0c37l1700272"

// Scraper fans out one feed query per region and tags every item with the
// region it was queried for.
type Scraper struct {
	baseURL string
	source  scraper.FeedSource
	parser  feed.Parser
	logger  *utils.Logger
}

// New creates a Kijiji scraper against the public feed endpoint.
func New(source scraper.FeedSource, parser feed.Parser, logger *utils.Logger) *Scraper {
	return NewWithBaseURL(defaultBaseURL, source, parser, logger)
}

// NewWithBaseURL creates a Kijiji scraper against baseURL.
func NewWithBaseURL(baseURL string, source scraper.FeedSource, parser feed.Parser, logger *utils.Logger) *Scraper {
	return &Scraper{baseURL: baseURL, source: source, parser: parser, logger: logger}
}

// Run implements scraper.RunFunc.
func (s *Scraper) Run(ctx context.Context, maxRent int, regions []string) ([]models.RawCandidate, error) {
	var out []models.RawCandidate

	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		doc := s.source.Fetch(ctx, s.QueryURL(maxRent, region), "kijiji:"+region)
		items := s.parser.Parse(doc)
		s.logger.Debug("[kijiji] %s -> %d items", region, len(items))

		for _, item := range items {
			out = append(out, scraper.ItemCandidate(item, region, region))
		}
	}

	return out, nil
}

// QueryURL builds the feed URL for one region.
func (s *Scraper) QueryURL(maxRent int, region string) string {
	return fmt.Sprintf("%s?ad=offering&price=0__%d&keywords=%s",
		s.baseURL, maxRent, url.QueryEscape(region))
}
