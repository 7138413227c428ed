package models

import (
	"fmt"
	"strings"
	"time"
)

// RawCandidate is an adapter's unnormalized record. Keys follow the
// canonical field names where the adapter knows them; any key may be absent.
type RawCandidate map[string]any

// Listing is the canonical record every source is normalized into.
// Nullable numeric fields are pointers so they serialize as JSON null.
type Listing struct {
	DateFound    string   `json:"date_found"`
	Source       string   `json:"source"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Price        *int     `json:"price"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	Neighborhood string   `json:"neighborhood"`
	Building     string   `json:"building"`
	Unit         string   `json:"unit"`
	Beds         string   `json:"beds"`
	Baths        string   `json:"baths"`
	Sqft         *int     `json:"sqft"`
	FeeMonth     *int     `json:"fee_month"`
	Parking      bool     `json:"parking"`
	Amenities    []string `json:"amenities"`
	Floor        *int     `json:"floor"`
	TotalFloors  *int     `json:"total_floors"`
	Exposure     string   `json:"exposure"`
	Images       []string `json:"images"`
	Description  string   `json:"description"`
	Score        *float64 `json:"score"`
	Notes        string   `json:"notes"`
}

// DedupKey returns the URL, falling back to the title. An empty key means
// the listing cannot be deduplicated and is dropped by the aggregator.
func (l *Listing) DedupKey() string {
	if l.URL != "" {
		return l.URL
	}
	return l.Title
}

// FeedItem is one <item> block extracted from a syndication document.
type FeedItem struct {
	Title          string
	Link           string
	Description    string
	RawDescription string
	PubDate        string
	Enclosure      string
}

// SourceCount is one entry of the per-source summary.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Summary tallies listings per source in first-seen source order.
type Summary struct {
	Counts []SourceCount `json:"counts"`
}

// String renders "A=2, B=1", or "none" for an empty summary.
func (s Summary) String() string {
	if len(s.Counts) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(s.Counts))
	for _, c := range s.Counts {
		parts = append(parts, fmt.Sprintf("%s=%d", c.Source, c.Count))
	}
	return strings.Join(parts, ", ")
}

// Dataset is the output of one pipeline run.
type Dataset struct {
	RunID        string    `json:"run_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	SeedFallback bool      `json:"seed_fallback"`
	Listings     []Listing `json:"listings"`
	Summary      Summary   `json:"summary"`
}

// Report holds the computed statistics over a dataset.
type Report struct {
	TotalListings  int            `json:"total_listings"`
	BySource       []SourceCount  `json:"by_source"`
	PricedListings int            `json:"priced_listings"`
	AveragePrice   float64        `json:"average_price"`
	MinPrice       int            `json:"min_price"`
	MaxPrice       int            `json:"max_price"`
	Cheapest       *Listing       `json:"cheapest,omitempty"`
	WithParking    int            `json:"with_parking"`
	ListingsByCity map[string]int `json:"listings_by_city"`
	SampleTitles   []string       `json:"sample_titles"`
}
