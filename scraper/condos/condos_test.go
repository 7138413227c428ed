package condos

import (
	"context"
	"errors"
	"testing"

	"rental-aggregator/scraper"
	"rental-aggregator/utils"
)

type fakePage struct {
	html    string
	err     error
	scrolls int
}

func (p *fakePage) Render(_ context.Context, _ string, scrolls int) (string, error) {
	p.scrolls = scrolls
	return p.html, p.err
}

const searchPage = `<html><body>
<div data-testid="listing-card">
  <a href="/toronto/meridian-15-greenview-ave/unit-2008">
    <img src="https://cdn.condos.ca/a.jpg"><img src="/b.jpg">
  </a>
  <div class="styles__Title">Meridian Condos - North York</div>
  <div class="styles__Price">$1,795</div>
  <div class="styles__Address">15 Greenview Ave</div>
  <div class="styles__Bed">1+1 bd</div>
  <div class="styles__Bath">1 ba</div>
  <div>600-699 sqft · 20th floor · Parking</div>
</div>
<div data-testid="listing-card">
  <a href="/toronto/unknown/unit-1"></a>
  <div class="styles__Title">Downtown loft</div>
</div>
</body></html>`

func TestRunNilPageReturnsEmpty(t *testing.T) {
	got, err := New(nil, utils.Discard()).Run(context.Background(), 1900, []string{"North York"})
	if err != nil || got != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", got, err)
	}
}

func TestRunExtractsCards(t *testing.T) {
	page := &fakePage{html: searchPage}
	got, err := New(page, utils.Discard()).Run(context.Background(), 1900, []string{"Markham", "North York"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.scrolls != scrolls {
		t.Errorf("scrolls = %d, want %d", page.scrolls, scrolls)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(got))
	}

	c := got[0]
	if c["url"] != "https://condos.ca/toronto/meridian-15-greenview-ave/unit-2008" {
		t.Errorf("url = %v", c["url"])
	}
	if c["city"] != "North York" || c["price"] != 1795 {
		t.Errorf("city/price = %v/%v", c["city"], c["price"])
	}
	if c["sqft"] != "600" || c["floor"] != "20" || c["parking"] != true {
		t.Errorf("sqft/floor/parking = %v/%v/%v", c["sqft"], c["floor"], c["parking"])
	}
	imgs, _ := c["images"].([]string)
	if len(imgs) != 2 || imgs[1] != "https://condos.ca/b.jpg" {
		t.Errorf("images = %#v", c["images"])
	}

	if got[1]["city"] != scraper.FallbackRegion {
		t.Errorf("fallback city = %v", got[1]["city"])
	}
}

func TestRunRenderErrorPropagates(t *testing.T) {
	_, err := New(&fakePage{err: errors.New("net::ERR_BLOCKED")}, utils.Discard()).Run(context.Background(), 1900, nil)
	if err == nil {
		t.Error("expected render error")
	}
}
