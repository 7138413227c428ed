// Package seed holds the built-in demo listings used when no source yields
// anything.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v2"

	"rental-aggregator/models"
)

//go:embed seed.yaml
var seedYAML []byte

// Load decodes the embedded seed records.
func Load() ([]models.RawCandidate, error) {
	return Parse(seedYAML)
}

// Parse decodes a YAML sequence of listing mappings.
func Parse(data []byte) ([]models.RawCandidate, error) {
	var rows []map[string]interface{}
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}

	out := make([]models.RawCandidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.RawCandidate(row))
	}
	return out, nil
}
