package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/labextract-server/internal/domain"
)

// EnvPrefix is prepended to every environment override, e.g. LABEXTRACT_SERVER_PORT.
const EnvPrefix = "LABEXTRACT"

// Manager loads the server configuration with Viper
type Manager struct {
	v      *viper.Viper
	config *domain.Config
}

// Option customises a Manager before the first load
type Option func(*viper.Viper)

// WithConfigFile reads an explicit file instead of searching the default paths
func WithConfigFile(path string) Option {
	return func(v *viper.Viper) { v.SetConfigFile(path) }
}

// NewManager creates a new configuration manager
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{v: viper.New()}
	for _, opt := range opts {
		opt(m.v)
	}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment and defaults
func (m *Manager) loadConfig() error {
	v := m.v
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/labextract/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// The file is optional: defaults and environment variables are enough to run.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults registers a default for every key so environment overrides are seen by Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 20<<20)
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "labextract")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.migrations_path", "file://migrations")

	// Store defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "labextract.db")
	v.SetDefault("store.postgres_url", "")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_items", 1000)
	v.SetDefault("cache.memory_ttl", "15m")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.default_ttl", "24h")
	v.SetDefault("cache.max_retries", 3)
	v.SetDefault("cache.pool_size", 10)
	v.SetDefault("cache.pool_timeout", "4s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.filename", "labextract.log")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Text extraction defaults
	v.SetDefault("text_extraction.base_url", "")
	v.SetDefault("text_extraction.api_key", "")
	v.SetDefault("text_extraction.timeout", "60s")
	v.SetDefault("text_extraction.rate_limit", 5)
	v.SetDefault("text_extraction.max_requests", 3)
	v.SetDefault("text_extraction.interval", "60s")
	v.SetDefault("text_extraction.open_timeout", "30s")

	// Extraction engine defaults
	ext := domain.DefaultExtractionConfig()
	v.SetDefault("extraction.strategy_confidence", ext.StrategyConfidence)
	v.SetDefault("extraction.min_confidence", ext.MinConfidence)
	v.SetDefault("extraction.value_epsilon", ext.ValueEpsilon)
	v.SetDefault("extraction.unknown_confidence", ext.UnknownConfidence)
	v.SetDefault("extraction.corroboration_bonus", ext.CorroborationBonus)
	v.SetDefault("extraction.implausible_value_penalty", ext.ImplausibleValuePenalty)
	v.SetDefault("extraction.max_plausible_value", ext.MaxPlausibleValue)
	v.SetDefault("extraction.strong_threshold", ext.StrongThreshold)
	v.SetDefault("extraction.weak_threshold", ext.WeakThreshold)
	v.SetDefault("extraction.hint_bonus", ext.HintBonus)
	v.SetDefault("extraction.name_blacklist", ext.NameBlacklist)
	v.SetDefault("extraction.name_stopwords", ext.NameStopwords)
	v.SetDefault("extraction.min_letter_ratio", ext.MinLetterRatio)
	v.SetDefault("extraction.max_name_length", ext.MaxNameLength)
	v.SetDefault("extraction.max_backtrack_words", ext.MaxBacktrackWords)
	v.SetDefault("extraction.genotype_window", ext.GenotypeWindow)
	v.SetDefault("extraction.context_lines", ext.ContextLines)
	v.SetDefault("extraction.containment_min_length", ext.ContainmentMinLength)
	v.SetDefault("extraction.vocabulary_file", "")
	v.SetDefault("extraction.parallel", ext.Parallel)

	// Service defaults
	v.SetDefault("service.max_input_chars", 200000)
	v.SetDefault("service.review_threshold", 50.0)
	v.SetDefault("service.persist", true)
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetExtractionConfig returns the engine configuration
func (m *Manager) GetExtractionConfig() domain.ExtractionConfig {
	return m.config.Extraction
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RateLimit < 0 {
		return fmt.Errorf("invalid server rate limit: %v", config.Server.RateLimit)
	}

	if config.Database.Enabled {
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if config.Database.Username == "" {
			return fmt.Errorf("database username is required")
		}
	}

	switch config.Store.Driver {
	case "sqlite":
		if config.Store.SQLitePath == "" {
			return fmt.Errorf("store sqlite_path is required")
		}
	case "postgres":
		if config.Store.PostgresURL == "" && !config.Database.Enabled {
			return fmt.Errorf("store postgres_url is required when the database is disabled")
		}
	case "none":
	default:
		return fmt.Errorf("invalid store driver: %s", config.Store.Driver)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if config.Service.MaxInputChars <= 0 {
		return fmt.Errorf("service max_input_chars must be positive")
	}
	if config.Service.ReviewThreshold < 0 || config.Service.ReviewThreshold > 100 {
		return fmt.Errorf("service review_threshold must be between 0 and 100")
	}
	if config.Extraction.MinConfidence < 0 || config.Extraction.MinConfidence > 100 {
		return fmt.Errorf("extraction min_confidence must be between 0 and 100")
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted database connection string
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetStorePostgresURL returns the store DSN, falling back to the history database
func (m *Manager) GetStorePostgresURL() string {
	if m.config.Store.PostgresURL != "" {
		return m.config.Store.PostgresURL
	}
	return m.GetDatabaseConnectionString()
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}
