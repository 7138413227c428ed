package config

import (
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultMaxRent = 1900
	DefaultOutput  = "exports/unified.json"
)

// DefaultRegions is the search area used when REGIONS is unset or empty.
var DefaultRegions = []string{"Markham", "Angus Glen", "Unionville", "North York", "Richmond Hill", "Vaughan"}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	MaxRent int
	Regions []string

	FeedParser     string
	RequestTimeout time.Duration
	MaxRetries     int
	RateLimitMs    int

	BrowserEnabled bool
	ChromeBin      string
	RenderWait     time.Duration

	OutputPath    string
	CSVOutputPath string
	DatabaseURL   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	HTTPAddr      string
	HTTPRateLimit int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		MaxRent: sanitizeMaxRent(os.Getenv("MAX_RENT")),
		Regions: parseRegions(os.Getenv("REGIONS")),

		FeedParser:     getEnv("FEED_PARSER", "regex"),
		RequestTimeout: getEnvMillis("REQUEST_TIMEOUT_MS", 15000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 2),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 1000),

		BrowserEnabled: getEnvBool("BROWSER_ENABLED", true),
		ChromeBin:      getEnv("CHROME_BIN", ""),
		RenderWait:     getEnvMillis("RENDER_WAIT_MS", 4000),

		OutputPath:    getEnv("OUTPUT_PATH", DefaultOutput),
		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", ""),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_MIN", 60)) * time.Minute,

		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		HTTPRateLimit: getEnvInt("HTTP_RATE_LIMIT", 100),
	}
}

// leadingIntRegexp matches the integer prefix of values like "2000.50".
var leadingIntRegexp = regexp.MustCompile(`^[+-]?\d+`)

// sanitizeMaxRent reads the leading integer of val, so "2000.50" and
// "2000abc" both give 2000. Anything without a positive integer prefix falls
// back to the default.
func sanitizeMaxRent(val string) int {
	n, err := strconv.Atoi(leadingIntRegexp.FindString(strings.TrimSpace(val)))
	if err != nil || n <= 0 {
		return DefaultMaxRent
	}
	return n
}

// parseRegions splits on ';' or ',' and drops blanks, keeping order.
func parseRegions(val string) []string {
	var regions []string
	for _, r := range strings.FieldsFunc(val, func(c rune) bool { return c == ';' || c == ',' }) {
		if r = strings.TrimSpace(r); r != "" {
			regions = append(regions, r)
		}
	}
	if len(regions) == 0 {
		return append([]string(nil), DefaultRegions...)
	}
	return regions
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Millisecond
}
