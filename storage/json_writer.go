package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"rental-aggregator/models"
)

// JSONWriter writes the listings of a dataset as a pretty-printed JSON array.
type JSONWriter struct {
	path string
}

// NewJSONWriter returns a writer targeting path. Nothing is touched on disk
// until Write.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// Path returns the absolute output path, or the configured one if it cannot
// be resolved.
func (j *JSONWriter) Path() string {
	if abs, err := filepath.Abs(j.path); err == nil {
		return abs
	}
	return j.path
}

// Write replaces the output file with ds.Listings, two-space indented and
// newline terminated. Intermediate directories are created automatically.
func (j *JSONWriter) Write(_ context.Context, ds *models.Dataset) error {
	listings := ds.Listings
	if listings == nil {
		listings = []models.Listing{}
	}

	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return fmt.Errorf("json: encode: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return fmt.Errorf("json: create output dir: %w", err)
	}

	// Write beside the target and rename so readers never see a partial file.
	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("json: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, j.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("json: rename into %q: %w", j.path, err)
	}
	return nil
}

func (j *JSONWriter) Close() error { return nil }
