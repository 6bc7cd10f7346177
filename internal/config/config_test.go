package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestManager_Defaults(t *testing.T) {
	m, err := NewManager(WithConfigFile(writeConfig(t, "environment: development\n")))
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	cfg := m.GetConfig()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 200000, cfg.Service.MaxInputChars)
	assert.Equal(t, 50.0, cfg.Service.ReviewThreshold)

	ext := m.GetExtractionConfig()
	assert.Equal(t, 50.0, ext.MinConfidence)
	assert.Equal(t, 0.01, ext.ValueEpsilon)
	assert.Equal(t, 5, ext.StrongThreshold)
	assert.Equal(t, 95.0, ext.StrategyConfidence["table_structure"])
	assert.Contains(t, ext.NameBlacklist, "patient")
	assert.True(t, ext.Parallel)
	assert.False(t, m.IsProduction())
}

func TestManager_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  port: 9090
store:
  driver: postgres
  postgres_url: postgres://labextract@db/labextract
extraction:
  min_confidence: 65
  strategy_confidence:
    free_form: 55
`)
	t.Setenv("LABEXTRACT_SERVICE_REVIEW_THRESHOLD", "75")
	t.Setenv("LABEXTRACT_LOGGING_LEVEL", "debug")

	m, err := NewManager(WithConfigFile(path))
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	cfg := m.GetConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://labextract@db/labextract", m.GetStorePostgresURL())
	assert.Equal(t, 75.0, cfg.Service.ReviewThreshold)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 65.0, cfg.Extraction.MinConfidence)
	assert.Equal(t, 55.0, cfg.Extraction.StrategyConfidence["free_form"])
	assert.True(t, m.IsProduction())
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"port", "server:\n  port: 70000\n"},
		{"store driver", "store:\n  driver: mongo\n"},
		{"log level", "logging:\n  level: verbose\n"},
		{"review threshold", "service:\n  review_threshold: 120\n"},
		{"postgres store without url", "store:\n  driver: postgres\n"},
		{"enabled database without host", "database:\n  enabled: true\n  host: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager(WithConfigFile(writeConfig(t, tt.body)))
			require.NoError(t, err)
			assert.Error(t, m.Validate())
		})
	}
}

func TestManager_MalformedFile(t *testing.T) {
	_, err := NewManager(WithConfigFile(writeConfig(t, "server: [unterminated\n")))
	assert.Error(t, err)
}

func TestManager_DatabaseConnectionString(t *testing.T) {
	m, err := NewManager(WithConfigFile(writeConfig(t, "database:\n  host: db\n  password: secret\n")))
	require.NoError(t, err)

	assert.Equal(t, "host=db port=5432 user=postgres password=secret dbname=labextract sslmode=disable",
		m.GetDatabaseConnectionString())
	assert.Equal(t, m.GetDatabaseConnectionString(), m.GetStorePostgresURL())
}
