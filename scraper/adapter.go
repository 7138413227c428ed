// Package scraper defines the source adapter contract and the pieces shared
// by syndication-backed adapters.
package scraper

import (
	"context"

	"rental-aggregator/models"
)

// RunFunc fetches raw candidates from one source. maxRent and regions are
// read-only inputs; the returned slice is owned by the caller.
type RunFunc func(ctx context.Context, maxRent int, regions []string) ([]models.RawCandidate, error)

// Adapter is a named, independently invoked source. The name is supplied by
// the driver and becomes the source tag during normalization.
type Adapter struct {
	Name string
	Run  RunFunc
}

// FeedSource fetches a syndication document. Implementations return an empty
// string instead of an error when the source is unreachable.
type FeedSource interface {
	Fetch(ctx context.Context, url, label string) string
}

// Page is the optional page-automation handle. A nil Page means the engine
// is unavailable.
type Page interface {
	// Render navigates to url, scrolls the page scrolls times and returns the
	// rendered document HTML.
	Render(ctx context.Context, url string, scrolls int) (string, error)
}
