package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 50.0, cfg.MinConfidence)
	assert.Equal(t, 50.0, cfg.ReviewThreshold)
	assert.Equal(t, 200000, cfg.MaxInputChars)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.Empty(t, cfg.VocabularyFile)
	assert.Empty(t, cfg.TextExtractionURL)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("LABEXTRACT_DATA_DIR", "/tmp/test-labextract")
	t.Setenv("LABEXTRACT_CACHE_MAX_ITEMS", "500")
	t.Setenv("LABEXTRACT_CACHE_TTL", "12h")
	t.Setenv("LABEXTRACT_MIN_CONFIDENCE", "60")
	t.Setenv("LABEXTRACT_REVIEW_THRESHOLD", "70")
	t.Setenv("LABEXTRACT_MAX_INPUT_CHARS", "1000")
	t.Setenv("LABEXTRACT_VOCABULARY_FILE", "/etc/labextract/vocabulary.yaml")
	t.Setenv("LABEXTRACT_TEXT_EXTRACTION_URL", "http://textract:9000")
	t.Setenv("LABEXTRACT_LOG_LEVEL", "debug")

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-labextract", cfg.DataDir)
	assert.Equal(t, 500, cfg.CacheMaxItems)
	assert.Equal(t, 12*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 60.0, cfg.MinConfidence)
	assert.Equal(t, 70.0, cfg.ReviewThreshold)
	assert.Equal(t, 1000, cfg.MaxInputChars)
	assert.Equal(t, "/etc/labextract/vocabulary.yaml", cfg.VocabularyFile)
	assert.Equal(t, "http://textract:9000", cfg.TextExtractionURL)
	assert.Equal(t, "debug", cfg.LogLevel)

	ext := cfg.ExtractionConfig()
	assert.Equal(t, 60.0, ext.MinConfidence)
	assert.Equal(t, "/etc/labextract/vocabulary.yaml", ext.VocabularyFile)
	assert.Equal(t, 70.0, cfg.ServiceConfig().ReviewThreshold)
	assert.Equal(t, "stderr", cfg.LoggingConfig().Output)
}

func TestLoadLiteConfig_InvalidValuesIgnored(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("LABEXTRACT_CACHE_MAX_ITEMS", "-3")
	t.Setenv("LABEXTRACT_MIN_CONFIDENCE", "250")
	t.Setenv("LABEXTRACT_CACHE_TTL", "soon")

	cfg := LoadLiteConfig()

	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.Equal(t, 50.0, cfg.MinConfidence)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
}

func TestLiteConfig_StoreDBPath(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.labextract"}

	assert.Equal(t, "/home/user/.labextract/labextract.db", cfg.StoreDBPath())
	assert.Equal(t, "/home/user/.labextract/exports", cfg.ExportDir())
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: filepath.Join(t.TempDir(), "labextract")}

	err := cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)

	_, err = os.Stat(cfg.ExportDir())
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"LABEXTRACT_DATA_DIR",
		"LABEXTRACT_CACHE_MAX_ITEMS",
		"LABEXTRACT_CACHE_TTL",
		"LABEXTRACT_VOCABULARY_FILE",
		"LABEXTRACT_MIN_CONFIDENCE",
		"LABEXTRACT_REVIEW_THRESHOLD",
		"LABEXTRACT_MAX_INPUT_CHARS",
		"LABEXTRACT_TEXT_EXTRACTION_URL",
		"LABEXTRACT_TEXT_EXTRACTION_KEY",
		"LABEXTRACT_LOG_LEVEL",
		"LABEXTRACT_LOG_FORMAT",
	}
	for _, v := range vars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}
