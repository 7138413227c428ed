package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"rental-aggregator/models"
)

var csvHeader = []string{
	"date_found", "source", "title", "url", "price", "address", "city",
	"neighborhood", "building", "unit", "beds", "baths", "sqft", "fee_month",
	"parking", "amenities", "floor", "total_floors", "exposure", "images",
	"description", "score", "notes",
}

// CSVWriter writes normalized listings to a CSV file, one row per listing.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write replaces the file contents with the header and every listing of ds.
// List fields are joined with "; ".
func (c *CSVWriter) Write(_ context.Context, ds *models.Dataset) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.file.Truncate(0); err != nil {
		return fmt.Errorf("csv: truncate: %w", err)
	}
	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("csv: rewind: %w", err)
	}
	if err := c.writer.Write(csvHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, l := range ds.Listings {
		row := []string{
			l.DateFound,
			l.Source,
			l.Title,
			l.URL,
			intCell(l.Price),
			l.Address,
			l.City,
			l.Neighborhood,
			l.Building,
			l.Unit,
			l.Beds,
			l.Baths,
			intCell(l.Sqft),
			intCell(l.FeeMonth),
			strconv.FormatBool(l.Parking),
			strings.Join(l.Amenities, "; "),
			intCell(l.Floor),
			intCell(l.TotalFloors),
			l.Exposure,
			strings.Join(l.Images, "; "),
			l.Description,
			floatCell(l.Score),
			l.Notes,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	return c.file.Close()
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
