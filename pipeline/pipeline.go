// Package pipeline drives the adapters one after another, isolates their
// failures and hands the normalized output to the aggregator.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rental-aggregator/models"
	"rental-aggregator/scraper"
	"rental-aggregator/services"
	"rental-aggregator/utils"
)

// Pipeline is one configured ingestion run. It is not safe for concurrent
// use; callers serialise Run.
type Pipeline struct {
	adapters   []scraper.Adapter
	normalizer *services.Normalizer
	aggregator *services.Aggregator
	logger     *utils.Logger
	maxRent    int
	regions    []string
	now        func() time.Time
}

// New validates the adapter set and returns a Pipeline. Adapter names must be
// non-empty, unique and distinct from the seed source tag.
func New(
	adapters []scraper.Adapter,
	normalizer *services.Normalizer,
	aggregator *services.Aggregator,
	logger *utils.Logger,
	maxRent int,
	regions []string,
) (*Pipeline, error) {
	seen := make(map[string]bool, len(adapters))
	for _, a := range adapters {
		switch {
		case strings.TrimSpace(a.Name) == "":
			return nil, fmt.Errorf("pipeline: adapter with empty name")
		case a.Name == services.SeedSource:
			return nil, fmt.Errorf("pipeline: adapter name %q is reserved", a.Name)
		case seen[a.Name]:
			return nil, fmt.Errorf("pipeline: duplicate adapter %q", a.Name)
		case a.Run == nil:
			return nil, fmt.Errorf("pipeline: adapter %q has no run function", a.Name)
		}
		seen[a.Name] = true
	}

	return &Pipeline{
		adapters:   adapters,
		normalizer: normalizer,
		aggregator: aggregator,
		logger:     logger,
		maxRent:    maxRent,
		regions:    append([]string(nil), regions...),
		now:        time.Now,
	}, nil
}

// Run executes every adapter in order. An adapter that errors or panics
// contributes zero records; Run itself only fails when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) (*models.Dataset, error) {
	batches := make([]services.Batch, 0, len(p.adapters))

	for _, a := range p.adapters {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline: run: %w", err)
		}

		tag := "[adapter:" + strings.ToLower(a.Name) + "]"
		raws, err := p.runAdapter(ctx, a)
		if err != nil {
			p.logger.Error("%s failed: %v", tag, err)
			continue
		}

		listings := p.normalizer.NormalizeAll(raws, a.Name)
		p.logger.Info("%s collected %d", tag, len(listings))
		batches = append(batches, services.Batch{Source: a.Name, Listings: listings})
	}

	result := p.aggregator.Aggregate(batches)
	runID := uuid.NewString()
	p.logger.Debug("[pipeline] run %s produced %d listings", runID, len(result.Listings))

	return &models.Dataset{
		RunID:        runID,
		GeneratedAt:  p.now().UTC(),
		SeedFallback: result.SeedFallback,
		Listings:     result.Listings,
		Summary:      result.Summary,
	}, nil
}

func (p *Pipeline) runAdapter(ctx context.Context, a scraper.Adapter) (raws []models.RawCandidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			raws, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	// Copy so a misbehaving adapter cannot reorder the shared region list.
	regions := append([]string(nil), p.regions...)
	return a.Run(ctx, p.maxRent, regions)
}
