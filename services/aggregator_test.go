package services

import (
	"testing"

	"rental-aggregator/models"
	"rental-aggregator/utils"
)

func testSeed() []models.RawCandidate {
	return []models.RawCandidate{
		{"title": "Seed A", "url": "https://example.com/seed-a", "source": "Kijiji"},
		{"title": "Seed B", "url": "https://example.com/seed-b"},
	}
}

func newTestAggregator() *Aggregator {
	return NewAggregator(newTestNormalizer(), testSeed(), utils.Discard())
}

func listing(source, url, title string) models.Listing {
	return models.Listing{Source: source, URL: url, Title: title, Amenities: []string{}, Images: []string{}}
}

func TestAggregateFirstOccurrenceWins(t *testing.T) {
	res := newTestAggregator().Aggregate([]Batch{
		{Source: "Kijiji", Listings: []models.Listing{
			listing("Kijiji", "https://example.com/1", "first"),
			listing("Kijiji", "https://example.com/2", "two"),
		}},
		{Source: "Craigslist", Listings: []models.Listing{
			listing("Craigslist", "https://example.com/1", "second, different fields"),
			listing("Craigslist", "https://example.com/3", "three"),
		}},
	})

	if len(res.Listings) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(res.Listings))
	}
	if res.Listings[0].Title != "first" || res.Listings[0].Source != "Kijiji" {
		t.Errorf("first occurrence should win, got %+v", res.Listings[0])
	}
	wantOrder := []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"}
	for i, u := range wantOrder {
		if res.Listings[i].URL != u {
			t.Errorf("listings[%d].URL = %q; want %q", i, res.Listings[i].URL, u)
		}
	}
	if res.SeedFallback {
		t.Error("seed fallback should not trigger")
	}
}

func TestAggregateTitleFallbackKey(t *testing.T) {
	res := newTestAggregator().Aggregate([]Batch{
		{Source: "A", Listings: []models.Listing{
			listing("A", "", "Same title"),
			listing("A", "", "Same title"),
			listing("A", "", ""),
			listing("A", "https://example.com/x", "Same title"),
		}},
	})

	if len(res.Listings) != 2 {
		t.Fatalf("expected 2 listings, got %d: %+v", len(res.Listings), res.Listings)
	}
	if res.Listings[0].URL != "" || res.Listings[1].URL != "https://example.com/x" {
		t.Errorf("unexpected listings: %+v", res.Listings)
	}
}

func TestAggregateFallsBackToSeed(t *testing.T) {
	res := newTestAggregator().Aggregate([]Batch{
		{Source: "Kijiji"},
		{Source: "Craigslist", Listings: []models.Listing{listing("Craigslist", "", "")}},
	})

	if !res.SeedFallback {
		t.Fatal("expected seed fallback")
	}
	if len(res.Listings) != 2 {
		t.Fatalf("expected 2 seed listings, got %d", len(res.Listings))
	}
	for _, l := range res.Listings {
		if l.Source != SeedSource {
			t.Errorf("seed listing source = %q; want %q", l.Source, SeedSource)
		}
		if l.Source == "Kijiji" || l.Source == "Craigslist" {
			t.Errorf("seed listing must not carry an adapter name: %q", l.Source)
		}
		if l.DateFound == "" || l.Amenities == nil || l.Images == nil {
			t.Errorf("seed listing not normalized: %+v", l)
		}
	}
	if len(res.Summary.Counts) != 1 || res.Summary.Counts[0] != (models.SourceCount{Source: SeedSource, Count: 2}) {
		t.Errorf("summary = %s", res.Summary)
	}
}

func TestSummarizeKeepsFirstSeenOrder(t *testing.T) {
	s := Summarize([]models.Listing{
		listing("Craigslist", "1", ""),
		listing("Kijiji", "2", ""),
		listing("Craigslist", "3", ""),
	})

	if s.String() != "Craigslist=2, Kijiji=1" {
		t.Errorf("summary = %q", s.String())
	}
	if Summarize(nil).String() != "none" {
		t.Errorf("empty summary = %q", Summarize(nil).String())
	}
}
