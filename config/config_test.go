package config

import (
	"reflect"
	"testing"
	"time"
)

func TestSanitizeMaxRent(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", DefaultMaxRent},
		{"2100", 2100},
		{" 1750 ", 1750},
		{"0", DefaultMaxRent},
		{"-5", DefaultMaxRent},
		{"abc", DefaultMaxRent},
		{"2000.50", 2000},
		{"2000abc", 2000},
		{"+1800", 1800},
		{"$2000", DefaultMaxRent},
		{"-5abc", DefaultMaxRent},
		{"99999999999999999999", DefaultMaxRent},
	}
	for _, tt := range tests {
		if got := sanitizeMaxRent(tt.in); got != tt.want {
			t.Errorf("sanitizeMaxRent(%q) = %d; want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseRegions(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", DefaultRegions},
		{" ; , ", DefaultRegions},
		{"Markham", []string{"Markham"}},
		{"Vaughan; North York ,Markham", []string{"Vaughan", "North York", "Markham"}},
		{"Markham;;Unionville", []string{"Markham", "Unionville"}},
	}
	for _, tt := range tests {
		if got := parseRegions(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseRegions(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseRegionsDefaultIsACopy(t *testing.T) {
	got := parseRegions("")
	got[0] = "changed"
	if DefaultRegions[0] != "Markham" {
		t.Error("default region list was mutated")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{
		"MAX_RENT", "REGIONS", "FEED_PARSER", "REQUEST_TIMEOUT_MS", "MAX_RETRIES",
		"RATE_LIMIT_MS", "BROWSER_ENABLED", "OUTPUT_PATH", "CACHE_TTL_MIN", "HTTP_ADDR",
	} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	if cfg.MaxRent != 1900 || len(cfg.Regions) != 6 {
		t.Errorf("MaxRent=%d Regions=%v", cfg.MaxRent, cfg.Regions)
	}
	if cfg.FeedParser != "regex" || cfg.RequestTimeout != 15*time.Second || cfg.MaxRetries != 2 {
		t.Errorf("fetch settings = %q %v %d", cfg.FeedParser, cfg.RequestTimeout, cfg.MaxRetries)
	}
	if !cfg.BrowserEnabled || cfg.OutputPath != DefaultOutput || cfg.CacheTTL != time.Hour || cfg.HTTPAddr != ":8080" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MAX_RENT", "2200")
	t.Setenv("REGIONS", "Vaughan,Markham")
	t.Setenv("BROWSER_ENABLED", "false")
	t.Setenv("RENDER_WAIT_MS", "250")
	t.Setenv("REDIS_DB", "3")

	cfg := FromEnv()
	if cfg.MaxRent != 2200 || !reflect.DeepEqual(cfg.Regions, []string{"Vaughan", "Markham"}) {
		t.Errorf("MaxRent=%d Regions=%v", cfg.MaxRent, cfg.Regions)
	}
	if cfg.BrowserEnabled || cfg.RenderWait != 250*time.Millisecond || cfg.RedisDB != 3 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}
