package scraper

import (
	"reflect"
	"testing"

	"rental-aggregator/models"
)

func TestItemCandidatePricePrefersDescription(t *testing.T) {
	raw := ItemCandidate(models.FeedItem{
		Title:       "$2,100 - big unit",
		Description: "Asking $1,850/month, parking included",
		Link:        "https://example.com/1",
	}, "Markham", "Markham")

	if raw["price"] != 1850 {
		t.Errorf("price = %v, want 1850", raw["price"])
	}
	if raw["parking"] != true {
		t.Errorf("parking = %v", raw["parking"])
	}
	if raw["url"] != "https://example.com/1" || raw["city"] != "Markham" {
		t.Errorf("unexpected candidate: %v", raw)
	}
}

func TestItemCandidatePriceFallsBackToTitle(t *testing.T) {
	raw := ItemCandidate(models.FeedItem{Title: "$1,790 1+den", Description: "call now"}, "GTA", "")
	if raw["price"] != 1790 {
		t.Errorf("price = %v, want 1790", raw["price"])
	}

	raw = ItemCandidate(models.FeedItem{Title: "no number", Description: "none"}, "GTA", "")
	if _, ok := raw["price"]; ok {
		t.Errorf("price should be absent, got %v", raw["price"])
	}
}

func TestItemCandidateImagesFromEnclosure(t *testing.T) {
	raw := ItemCandidate(models.FeedItem{Title: "x", Enclosure: "http://x/y.jpg"}, "GTA", "")
	if !reflect.DeepEqual(raw["images"], []string{"http://x/y.jpg"}) {
		t.Errorf("images = %#v", raw["images"])
	}

	raw = ItemCandidate(models.FeedItem{Title: "x"}, "GTA", "")
	if imgs, _ := raw["images"].([]string); len(imgs) != 0 {
		t.Errorf("images should be empty, got %#v", raw["images"])
	}
}
