// Package realtor renders Realtor.ca rental searches through the page
// automation handle and extracts listing cards.
package realtor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rental-aggregator/models"
	"rental-aggregator/scraper"
	"rental-aggregator/services"
	"rental-aggregator/utils"
)

const (
	siteURL   = "https://www.realtor.ca"
	searchFmt = siteURL + "/map#TransactionTypeId=3&PropertySearchTypeId=1&BedRange=1-1&RentMax=%d&Keywords=%s"
)

var cardSelectors = []string{
	"div.cardCon",
	`div[class*="listingCard"]`,
	`[data-testid="listing-card"]`,
}

// Scraper queries one search page per region. The page handle may be nil.
type Scraper struct {
	page   scraper.Page
	logger *utils.Logger
}

// New creates a Realtor scraper. Pass a nil page when no browser is running.
func New(page scraper.Page, logger *utils.Logger) *Scraper {
	return &Scraper{page: page, logger: logger}
}

// Run implements scraper.RunFunc. A region whose page fails to render is
// logged and skipped.
func (s *Scraper) Run(ctx context.Context, maxRent int, regions []string) ([]models.RawCandidate, error) {
	if s.page == nil {
		return nil, nil
	}

	var out []models.RawCandidate
	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		html, err := s.page.Render(ctx, SearchURL(maxRent, region), 0)
		if err != nil {
			s.logger.Warn("[realtor] %s: render failed: %v", region, err)
			continue
		}

		cards, err := parseCards(html, region)
		if err != nil {
			return out, fmt.Errorf("realtor: parse %s: %w", region, err)
		}
		s.logger.Debug("[realtor] %s -> %d cards", region, len(cards))
		out = append(out, cards...)
	}
	return out, nil
}

// SearchURL builds the rental map search for one region.
func SearchURL(maxRent int, region string) string {
	return fmt.Sprintf(searchFmt, maxRent, url.QueryEscape(region))
}

func parseCards(html, region string) ([]models.RawCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var out []models.RawCandidate
	scraper.FindCards(doc, cardSelectors...).Each(func(_ int, card *goquery.Selection) {
		link := scraper.AbsoluteURL(siteURL, scraper.FirstAttr(card, "href", "a.blockLink", "a[href*='/real-estate/']", "a[href]"))
		address := scraper.FirstText(card, ".listingCardAddress", `[class*="Address"]`)
		if link == "" && address == "" {
			return
		}

		text := strings.Join(strings.Fields(card.Text()), " ")
		raw := models.RawCandidate{
			"title":        address,
			"url":          link,
			"address":      address,
			"city":         region,
			"neighborhood": region,
			"beds":         scraper.FirstText(card, `[title="Bedrooms"] .listingCardIconNum`, `[class*="Bed"]`),
			"baths":        scraper.FirstText(card, `[title="Bathrooms"] .listingCardIconNum`, `[class*="Bath"]`),
			"parking":      services.DetectParkingMention(text),
			"description":  text,
		}
		if price := services.ExtractPrice(scraper.FirstText(card, ".listingCardPrice", `[class*="Price"]`)); price != nil {
			raw["price"] = *price
		}
		if img := scraper.FirstAttr(card, "src", "img.defaultListingImage", "img"); img != "" {
			raw["images"] = []string{scraper.AbsoluteURL(siteURL, img)}
		}
		out = append(out, raw)
	})
	return out, nil
}
