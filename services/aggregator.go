package services

import (
	"rental-aggregator/models"
	"rental-aggregator/utils"
)

// SeedSource tags fallback records so they are never mistaken for real
// adapter output.
const SeedSource = "DemoSeed"

// Batch is one adapter's normalized output.
type Batch struct {
	Source   string
	Listings []models.Listing
}

// AggregateResult is the merged, deduplicated dataset of one run.
type AggregateResult struct {
	Listings     []models.Listing
	Summary      models.Summary
	SeedFallback bool
}

// Aggregator merges per-adapter batches into a single deduplicated set.
type Aggregator struct {
	normalizer *Normalizer
	seed       []models.RawCandidate
	logger     *utils.Logger
}

// NewAggregator creates an Aggregator that falls back to seed when every
// batch is empty.
func NewAggregator(normalizer *Normalizer, seed []models.RawCandidate, logger *utils.Logger) *Aggregator {
	return &Aggregator{normalizer: normalizer, seed: seed, logger: logger}
}

// Aggregate concatenates batches in order and keeps the first listing seen
// for each dedup key. Listings with neither URL nor title are dropped.
func (a *Aggregator) Aggregate(batches []Batch) AggregateResult {
	var merged []models.Listing
	for _, b := range batches {
		merged = append(merged, b.Listings...)
	}

	result := AggregateResult{Listings: a.dedupe(merged)}

	if len(result.Listings) == 0 {
		a.logger.Warn("[summary] adapters empty; falling back to demo seed data.")
		result.Listings = a.dedupe(a.normalizer.NormalizeAll(a.seed, SeedSource))
		result.SeedFallback = true
	}

	result.Summary = Summarize(result.Listings)
	return result
}

func (a *Aggregator) dedupe(listings []models.Listing) []models.Listing {
	seen := utils.NewKeySet()
	out := make([]models.Listing, 0, len(listings))
	dropped := 0

	for _, l := range listings {
		key := l.DedupKey()
		if key == "" {
			dropped++
			continue
		}
		if !seen.Add(key) {
			a.logger.Debug("[aggregate] duplicate skipped: %s", key)
			continue
		}
		out = append(out, l)
	}

	if dropped > 0 {
		a.logger.Debug("[aggregate] dropped %d listings without url or title", dropped)
	}
	return out
}

// Summarize counts listings per source in first-seen source order.
func Summarize(listings []models.Listing) models.Summary {
	order := utils.NewKeySet()
	counts := make(map[string]int)
	for _, l := range listings {
		order.Add(l.Source)
		counts[l.Source]++
	}

	summary := models.Summary{Counts: make([]models.SourceCount, 0, order.Size())}
	for _, source := range order.Keys() {
		summary.Counts = append(summary.Counts, models.SourceCount{Source: source, Count: counts[source]})
	}
	return summary
}
