package realtor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rental-aggregator/scraper"
	"rental-aggregator/utils"
)

type fakePage struct {
	html  map[string]string
	fail  map[string]bool
	calls []string
}

func (p *fakePage) Render(_ context.Context, url string, _ int) (string, error) {
	p.calls = append(p.calls, url)
	for region, failed := range p.fail {
		if failed && strings.Contains(url, region) {
			return "", errors.New("navigation timeout")
		}
	}
	for region, html := range p.html {
		if strings.Contains(url, region) {
			return html, nil
		}
	}
	return "<html><body>Access denied</body></html>", nil
}

const searchPage = `<html><body>
<div class="cardCon">
  <a class="blockLink" href="/real-estate/123/15-water-walk-dr">
    <img class="defaultListingImage" src="https://cdn.realtor.ca/1.jpg">
  </a>
  <div class="listingCardPrice">$1,890/Monthly</div>
  <div class="listingCardAddress">1208 - 15 Water Walk Dr, Markham</div>
  <div title="Bedrooms"><span class="listingCardIconNum">1 + 1</span></div>
  <div title="Bathrooms"><span class="listingCardIconNum">1</span></div>
  <div>Underground parking</div>
</div>
<div class="cardCon"><span>ad slot</span></div>
</body></html>`

func TestRunNilPageReturnsEmpty(t *testing.T) {
	got, err := New(nil, utils.Discard()).Run(context.Background(), 1900, []string{"Markham"})
	if err != nil || got != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", got, err)
	}
}

func TestRunExtractsCards(t *testing.T) {
	page := &fakePage{html: map[string]string{"Markham": searchPage}}
	got, err := New(page, utils.Discard()).Run(context.Background(), 1900, []string{"Markham", "Vaughan"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.calls) != 2 {
		t.Errorf("expected one render per region, got %d", len(page.calls))
	}
	if !strings.Contains(page.calls[0], "RentMax=1900") {
		t.Errorf("search url = %q", page.calls[0])
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 card, got %d", len(got))
	}
	c := got[0]
	if c["url"] != "https://www.realtor.ca/real-estate/123/15-water-walk-dr" {
		t.Errorf("url = %v", c["url"])
	}
	if c["price"] != 1890 || c["beds"] != "1 + 1" || c["baths"] != "1" {
		t.Errorf("price/beds/baths = %v/%v/%v", c["price"], c["beds"], c["baths"])
	}
	if c["city"] != "Markham" || c["parking"] != true {
		t.Errorf("city/parking = %v/%v", c["city"], c["parking"])
	}
	if imgs, _ := c["images"].([]string); len(imgs) != 1 || imgs[0] != "https://cdn.realtor.ca/1.jpg" {
		t.Errorf("images = %#v", c["images"])
	}
}

func TestRunSkipsRegionsThatFailToRender(t *testing.T) {
	page := &fakePage{
		html: map[string]string{"Markham": searchPage},
		fail: map[string]bool{"Vaughan": true},
	}
	got, err := New(page, utils.Discard()).Run(context.Background(), 1900, []string{"Vaughan", "Markham"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected Markham card only, got %d", len(got))
	}
}

var _ scraper.Page = (*fakePage)(nil)
