package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"rental-aggregator/models"
)

// isoLayout matches the millisecond UTC form used across exported datasets.
const isoLayout = "2006-01-02T15:04:05.000Z"

var (
	// listSplitRegexp splits scalar amenity strings such as "gym; pool, balcony".
	listSplitRegexp = regexp.MustCompile(`[;,]`)

	dateFields = []string{"date_found", "pubDate", "date"}

	dateLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		time.RFC822Z,
		time.RFC822,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

// Normalizer maps heterogeneous adapter output onto models.Listing.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a Normalizer that stamps undated records with the
// current time.
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewNormalizerWithClock creates a Normalizer with a fixed clock, for tests
// and reproducible exports.
func NewNormalizerWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize is total over any RawCandidate: missing or mistyped fields fall
// back to their defaults and every slice is non-nil.
func (n *Normalizer) Normalize(raw models.RawCandidate, source string) models.Listing {
	return models.Listing{
		DateFound:    n.dateFound(raw),
		Source:       source,
		Title:        normaliseText(stringField(raw["title"])),
		URL:          strings.TrimSpace(stringField(raw["url"])),
		Price:        intField(raw["price"]),
		Address:      strings.TrimSpace(stringField(raw["address"])),
		City:         strings.TrimSpace(stringField(raw["city"])),
		Neighborhood: strings.TrimSpace(stringField(raw["neighborhood"])),
		Building:     strings.TrimSpace(stringField(raw["building"])),
		Unit:         strings.TrimSpace(stringField(raw["unit"])),
		Beds:         strings.TrimSpace(stringField(raw["beds"])),
		Baths:        strings.TrimSpace(stringField(raw["baths"])),
		Sqft:         intField(raw["sqft"]),
		FeeMonth:     intField(raw["fee_month"]),
		Parking:      boolField(raw["parking"]),
		Amenities:    listField(raw["amenities"], true),
		Floor:        intField(raw["floor"]),
		TotalFloors:  intField(raw["total_floors"]),
		Exposure:     strings.TrimSpace(stringField(raw["exposure"])),
		Images:       listField(raw["images"], false),
		Description:  strings.TrimSpace(stringField(raw["description"])),
		Score:        floatField(raw["score"]),
		Notes:        strings.TrimSpace(stringField(raw["notes"])),
	}
}

// NormalizeAll normalizes every candidate under the same source tag.
func (n *Normalizer) NormalizeAll(raws []models.RawCandidate, source string) []models.Listing {
	out := make([]models.Listing, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.Normalize(raw, source))
	}
	return out
}

func (n *Normalizer) dateFound(raw models.RawCandidate) string {
	for _, key := range dateFields {
		if t, ok := parseDate(raw[key]); ok {
			return t.UTC().Format(isoLayout)
		}
	}
	return n.now().UTC().Format(isoLayout)
}

func parseDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case *time.Time:
		if val == nil || val.IsZero() {
			return time.Time{}, false
		}
		return *val, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func stringField(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func intField(v any) *int {
	var f float64
	switch val := v.(type) {
	case int:
		return &val
	case *int:
		if val == nil {
			return nil
		}
		n := *val
		return &n
	case int64:
		f = float64(val)
	case int32:
		f = float64(val)
	case float64:
		f = val
	case float32:
		f = float64(val)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return intFromFloat(f)
}

// intFromFloat truncates f toward zero. NaN, infinities and values outside
// the int range yield nil instead of wrapping.
func intFromFloat(f float64) *int {
	if math.IsNaN(f) || f < math.MinInt || f >= math.MaxInt {
		return nil
	}
	n := int(f)
	return &n
}

func floatField(v any) *float64 {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case *float64:
		if val == nil {
			return nil
		}
		f = *val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// boolField coerces to a strict boolean. Strings use strconv.ParseBool and
// otherwise count as true when non-empty.
func boolField(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case *bool:
		return val != nil && *val
	case string:
		s := strings.TrimSpace(val)
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		return s != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0 && !math.IsNaN(val)
	default:
		return false
	}
}

// listField accepts a sequence or a scalar. Scalars are split on ';' and ','
// when split is set, otherwise wrapped as a single element. Blank entries are
// always dropped.
func listField(v any, split bool) []string {
	out := []string{}
	appendItem := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	switch val := v.(type) {
	case nil:
	case []string:
		for _, s := range val {
			appendItem(s)
		}
	case []any:
		for _, item := range val {
			if item == nil || item == false {
				continue
			}
			appendItem(stringField(item))
		}
	default:
		s := stringField(val)
		if !split {
			appendItem(s)
			break
		}
		for _, piece := range listSplitRegexp.Split(s, -1) {
			appendItem(piece)
		}
	}
	return out
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
