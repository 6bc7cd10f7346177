// Package config provides configuration management for the extraction server.
// This file contains the lightweight configuration for standalone operation.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labextract-server/internal/domain"
)

// LiteConfig is a simplified configuration for the MCP server and the CLI.
// It requires no external databases and uses sensible defaults.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for the SQLite store and exports

	// Cache settings
	CacheMaxItems int           // Maximum results in the memory cache
	CacheTTL      time.Duration // Result cache TTL

	// Extraction settings
	VocabularyFile  string  // Optional YAML vocabulary extension
	MinConfidence   float64 // Entity confidence floor
	ReviewThreshold float64 // Document confidence below which a result needs review
	MaxInputChars   int     // Input budget before truncation

	// Text extraction service (optional; plain text only when empty)
	TextExtractionURL string
	TextExtractionKey string

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".labextract")

	return &LiteConfig{
		DataDir:         dataDir,
		CacheMaxItems:   1000,
		CacheTTL:        24 * time.Hour,
		MinConfidence:   domain.DefaultExtractionConfig().MinConfidence,
		ReviewThreshold: 50,
		MaxInputChars:   200000,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("LABEXTRACT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("LABEXTRACT_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxItems = n
		}
	}
	if v := os.Getenv("LABEXTRACT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}

	cfg.VocabularyFile = os.Getenv("LABEXTRACT_VOCABULARY_FILE")
	if v := os.Getenv("LABEXTRACT_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 100 {
			cfg.MinConfidence = f
		}
	}
	if v := os.Getenv("LABEXTRACT_REVIEW_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 100 {
			cfg.ReviewThreshold = f
		}
	}
	if v := os.Getenv("LABEXTRACT_MAX_INPUT_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxInputChars = n
		}
	}

	cfg.TextExtractionURL = os.Getenv("LABEXTRACT_TEXT_EXTRACTION_URL")
	cfg.TextExtractionKey = os.Getenv("LABEXTRACT_TEXT_EXTRACTION_KEY")

	if v := os.Getenv("LABEXTRACT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LABEXTRACT_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// StoreDBPath returns the path to the SQLite entity store.
func (c *LiteConfig) StoreDBPath() string {
	return filepath.Join(c.DataDir, "labextract.db")
}

// ExportDir returns the directory for JSON exports.
func (c *LiteConfig) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.ExportDir(), 0755)
}

// ExtractionConfig returns the engine configuration: defaults plus the lite overrides.
func (c *LiteConfig) ExtractionConfig() domain.ExtractionConfig {
	cfg := domain.DefaultExtractionConfig()
	cfg.MinConfidence = c.MinConfidence
	cfg.VocabularyFile = c.VocabularyFile
	return cfg
}

// ServiceConfig returns the caller-side policy.
func (c *LiteConfig) ServiceConfig() domain.ServiceConfig {
	return domain.ServiceConfig{
		MaxInputChars:   c.MaxInputChars,
		ReviewThreshold: c.ReviewThreshold,
		Persist:         true,
	}
}

// LoggingConfig returns the logger configuration. The MCP server speaks on stdout, so logs
// always go to stderr.
func (c *LiteConfig) LoggingConfig() domain.LoggingConfig {
	return domain.LoggingConfig{Level: c.LogLevel, Format: c.LogFormat, Output: "stderr"}
}

// TextExtractionConfig returns the text extraction client settings.
func (c *LiteConfig) TextExtractionConfig() domain.TextExtractionConfig {
	return domain.TextExtractionConfig{
		BaseURL:     c.TextExtractionURL,
		APIKey:      c.TextExtractionKey,
		Timeout:     60 * time.Second,
		RateLimit:   5,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		OpenTimeout: 30 * time.Second,
	}
}
