package seed

import (
	"reflect"
	"testing"
	"time"

	"rental-aggregator/services"
)

func TestLoadDecodesSeedRecords(t *testing.T) {
	rows, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 seed records, got %d", len(rows))
	}
	if rows[0]["unit"] != "1208" {
		t.Errorf("unit should stay a string, got %#v", rows[0]["unit"])
	}
	if rows[0]["fee_month"] != nil {
		t.Errorf("fee_month should be null, got %#v", rows[0]["fee_month"])
	}
}

func TestSeedNormalizesCleanly(t *testing.T) {
	rows, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	n := services.NewNormalizerWithClock(func() time.Time { return time.Unix(0, 0) })
	got := n.NormalizeAll(rows, services.SeedSource)

	first := got[0]
	if first.DateFound != "2025-01-01T09:00:00.000Z" {
		t.Errorf("DateFound = %q", first.DateFound)
	}
	if first.Price == nil || *first.Price != 1890 {
		t.Errorf("Price = %v", first.Price)
	}
	if first.FeeMonth != nil || first.Score != nil {
		t.Error("null numerics should stay nil")
	}
	if !first.Parking {
		t.Error("Parking should be true")
	}
	if !reflect.DeepEqual(first.Amenities, []string{"gym", "pool", "balcony"}) {
		t.Errorf("Amenities = %v", first.Amenities)
	}
	if first.Floor == nil || *first.Floor != 12 || first.TotalFloors == nil || *first.TotalFloors != 25 {
		t.Errorf("Floor/TotalFloors = %v/%v", first.Floor, first.TotalFloors)
	}

	if got[2].City != "Toronto" || got[2].Neighborhood != "North York" {
		t.Errorf("third record region = %s/%s", got[2].City, got[2].Neighborhood)
	}
	for _, l := range got {
		if l.Source != services.SeedSource {
			t.Errorf("source = %q", l.Source)
		}
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("- title: [unterminated")); err == nil {
		t.Error("expected decode error")
	}
}
