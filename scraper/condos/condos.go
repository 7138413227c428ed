// Package condos renders the Condos.ca rental search, scrolling to load the
// lazily appended cards, and extracts listing details.
package condos

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rental-aggregator/models"
	"rental-aggregator/scraper"
	"rental-aggregator/services"
	"rental-aggregator/utils"
)

const (
	siteURL   = "https://condos.ca"
	searchFmt = siteURL + "/toronto/condos-for-rent?rent_max=%d&beds=1.1&sublocality_id=&mode=Rent"

	// scrolls is how many times the page is scrolled to trigger lazy loading.
	scrolls = 6
)

var (
	cardSelectors = []string{
		`[data-testid="listing-card"]`,
		`div[class*="ListingPreview"]`,
		`div[class*="listing-card"]`,
	}

	sqftRegexp  = regexp.MustCompile(`(?i)(\d{3,4})\s*(?:-\s*\d{3,4}\s*)?sq\.?\s*ft`)
	floorRegexp = regexp.MustCompile(`(?i)\bfloor\s*(\d{1,2})\b|\b(\d{1,2})(?:st|nd|rd|th)\s+floor\b`)
)

// Scraper renders a single scrolled search page. The page handle may be nil.
type Scraper struct {
	page   scraper.Page
	logger *utils.Logger
}

// New creates a Condos scraper. Pass a nil page when no browser is running.
func New(page scraper.Page, logger *utils.Logger) *Scraper {
	return &Scraper{page: page, logger: logger}
}

// Run implements scraper.RunFunc.
func (s *Scraper) Run(ctx context.Context, maxRent int, regions []string) ([]models.RawCandidate, error) {
	if s.page == nil {
		return nil, nil
	}

	html, err := s.page.Render(ctx, SearchURL(maxRent), scrolls)
	if err != nil {
		return nil, fmt.Errorf("condos: render: %w", err)
	}

	cards, err := parseCards(html, regions)
	if err != nil {
		return nil, fmt.Errorf("condos: parse: %w", err)
	}
	s.logger.Debug("[condos] %d cards", len(cards))
	return cards, nil
}

// SearchURL builds the rental search URL.
func SearchURL(maxRent int) string {
	return fmt.Sprintf(searchFmt, maxRent)
}

func parseCards(html string, regions []string) ([]models.RawCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var out []models.RawCandidate
	scraper.FindCards(doc, cardSelectors...).Each(func(_ int, card *goquery.Selection) {
		link := scraper.AbsoluteURL(siteURL, scraper.FirstAttr(card, "href", "a[href]"))
		title := scraper.FirstText(card, `[class*="Title"]`, "h2", "h3")
		if link == "" && title == "" {
			return
		}

		address := scraper.FirstText(card, `[class*="Address"]`, "address")
		text := strings.Join(strings.Fields(card.Text()), " ")

		city, neighborhood := scraper.FallbackRegion, ""
		if region, ok := services.MatchRegion(regions, title, address, text); ok {
			city, neighborhood = region, region
		}

		raw := models.RawCandidate{
			"title":        title,
			"url":          link,
			"address":      address,
			"city":         city,
			"neighborhood": neighborhood,
			"building":     scraper.FirstText(card, `[class*="Building"]`),
			"beds":         scraper.FirstText(card, `[class*="Bed"]`),
			"baths":        scraper.FirstText(card, `[class*="Bath"]`),
			"parking":      services.DetectParkingMention(text),
			"description":  text,
		}
		if price := services.ExtractPrice(scraper.FirstText(card, `[class*="Price"]`)); price != nil {
			raw["price"] = *price
		}
		if m := sqftRegexp.FindStringSubmatch(text); len(m) > 1 {
			raw["sqft"] = m[1]
		}
		if m := floorRegexp.FindStringSubmatch(text); len(m) > 2 {
			if m[1] != "" {
				raw["floor"] = m[1]
			} else {
				raw["floor"] = m[2]
			}
		}

		var images []string
		card.Find("img").Each(func(_ int, img *goquery.Selection) {
			if src, ok := img.Attr("src"); ok && strings.TrimSpace(src) != "" {
				images = append(images, scraper.AbsoluteURL(siteURL, src))
			}
		})
		raw["images"] = images

		out = append(out, raw)
	})
	return out, nil
}
