package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config is everything the server and eval commands need, read from the
// environment.
type Config struct {
	PublicBaseURL   string
	CredentialsFile string

	SpreadsheetID   string
	CategoriesRange string
	ShippingRange   string

	AnalyzerProvider string
	AnalyzerModel    string

	ImageHost string
	EBay      EBayConfig
	S3        S3Config

	ProcessedMarker      string
	MaxConcurrentRecords int
	LogLevel             slog.Level

	ProfilePath string
}

type EBayConfig struct {
	Token       string
	SiteID      string
	Sandbox     bool
	CompatLevel string
}

type S3Config struct {
	Bucket        string
	Region        string
	PublicBaseURL string
}

// FromEnv reads Config from environment variables, applying defaults.
func FromEnv() *Config {
	cfg := &Config{
		PublicBaseURL:   strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		SpreadsheetID:   os.Getenv("CONFIG_SPREADSHEET_ID"),
		CategoriesRange: getenv("CATEGORIES_RANGE", "Categories!A2:B"),
		ShippingRange:   getenv("SHIPPING_RANGE", "Shipping!A2:A"),

		AnalyzerProvider: getenv("ANALYZER_PROVIDER", "openai"),
		AnalyzerModel:    os.Getenv("ANALYZER_MODEL"),

		ImageHost: strings.ToLower(getenv("IMAGE_HOST", "none")),
		EBay: EBayConfig{
			Token:       firstNonEmpty(os.Getenv("EBAY_USER_TOKEN"), os.Getenv("EBAY_AUTH_TOKEN")),
			SiteID:      getenv("EBAY_SITE_ID", "0"),
			Sandbox:     parseBool(os.Getenv("EBAY_SANDBOX")),
			CompatLevel: getenv("EBAY_COMPAT_LEVEL", "1423"),
		},
		S3: S3Config{
			Bucket:        os.Getenv("S3_BUCKET"),
			Region:        os.Getenv("S3_REGION"),
			PublicBaseURL: strings.TrimRight(os.Getenv("S3_PUBLIC_BASE_URL"), "/"),
		},

		ProcessedMarker:      getenv("PROCESSED_MARKER", "済"),
		MaxConcurrentRecords: 1,
		LogLevel:             parseLevel(os.Getenv("LOG_LEVEL")),
		ProfilePath:          os.Getenv("LISTING_PROFILE"),
	}

	if v := os.Getenv("MAX_CONCURRENT_RECORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConcurrentRecords = n
		} else {
			slog.Warn("Ignoring invalid MAX_CONCURRENT_RECORDS", "value", v)
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseBool(v string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(v))
	return b
}

func parseLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
