package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment    string               `mapstructure:"environment"`
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Store          StoreConfig          `mapstructure:"store"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	TextExtraction TextExtractionConfig `mapstructure:"text_extraction"`
	Extraction     ExtractionConfig     `mapstructure:"extraction"`
	Service        ServiceConfig        `mapstructure:"service"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	RateLimit      float64       `mapstructure:"rate_limit"` // requests per second per client
	RateBurst      int           `mapstructure:"rate_burst"`
}

// DatabaseConfig represents the PostgreSQL connection used for extraction history
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// StoreConfig selects the biomarker/variant persistence backend
type StoreConfig struct {
	Driver      string `mapstructure:"driver"` // "sqlite" or "postgres"
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresURL string `mapstructure:"postgres_url"`
}

// CacheConfig represents extraction result cache configuration
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxItems    int           `mapstructure:"max_items"`
	MemoryTTL   time.Duration `mapstructure:"memory_ttl"`
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// TextExtractionConfig represents the document-to-text collaborator
type TextExtractionConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   int           `mapstructure:"rate_limit"` // requests per second
	MaxRequests uint32        `mapstructure:"max_requests"`
	Interval    time.Duration `mapstructure:"interval"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

// ServiceConfig holds the caller-side policy around the engine
type ServiceConfig struct {
	MaxInputChars   int     `mapstructure:"max_input_chars"`
	ReviewThreshold float64 `mapstructure:"review_threshold"`
	Persist         bool    `mapstructure:"persist"`
}

// ExtractionConfig holds every tuned constant of the extraction engine. The defaults were
// fitted against sample reports and are expected to be revisited.
type ExtractionConfig struct {
	// StrategyConfidence is the self-declared confidence of each generator, keyed by Strategy.
	StrategyConfidence map[string]float64 `mapstructure:"strategy_confidence"`

	MinConfidence           float64 `mapstructure:"min_confidence"`
	ValueEpsilon            float64 `mapstructure:"value_epsilon"`
	UnknownConfidence       float64 `mapstructure:"unknown_confidence"`
	CorroborationBonus      float64 `mapstructure:"corroboration_bonus"`
	ImplausibleValuePenalty float64 `mapstructure:"implausible_value_penalty"`
	MaxPlausibleValue       float64 `mapstructure:"max_plausible_value"`

	StrongThreshold int `mapstructure:"strong_threshold"`
	WeakThreshold   int `mapstructure:"weak_threshold"`
	HintBonus       int `mapstructure:"hint_bonus"`

	// NameBlacklist rejects a name when any of its words is listed; NameStopwords only
	// when the whole name is one of them.
	NameBlacklist  []string `mapstructure:"name_blacklist"`
	NameStopwords  []string `mapstructure:"name_stopwords"`
	MinLetterRatio float64  `mapstructure:"min_letter_ratio"`
	MaxNameLength  int      `mapstructure:"max_name_length"`

	MaxBacktrackWords    int `mapstructure:"max_backtrack_words"`
	GenotypeWindow       int `mapstructure:"genotype_window"`
	ContextLines         int `mapstructure:"context_lines"`
	ContainmentMinLength int `mapstructure:"containment_min_length"`

	VocabularyFile string `mapstructure:"vocabulary_file"`
	Parallel       bool   `mapstructure:"parallel"`
}

// DefaultStrategyConfidence returns the shipped per-strategy confidence table.
func DefaultStrategyConfidence() map[string]float64 {
	return map[string]float64{
		string(StrategyTableStructure):    95,
		string(StrategyLabeledRange):      90,
		string(StrategyDelimiterPair):     80,
		string(StrategyUnitAnchored):      70,
		string(StrategyFreeForm):          60,
		string(StrategyGeneticTable):      95,
		string(StrategyIdentifierContext): 90,
		string(StrategyGeneMutation):      80,
		string(StrategyGenotypePattern):   70,
		string(StrategyGeneScan):          60,
	}
}

// DefaultNameBlacklist lists administrative words that never appear in an analyte name.
func DefaultNameBlacklist() []string {
	return []string{
		"patient", "name", "dob", "birth", "age", "gender", "page", "specimen", "collected",
		"received", "reported", "printed", "account", "accession", "order", "ordered",
		"physician", "doctor", "provider", "phone", "fax", "tel", "address", "mrn", "npi",
		"barcode", "clia", "director", "date", "id", "room", "bed", "zip", "client", "copy",
		"version", "street", "city", "email", "insurance", "policy",
	}
}

// DefaultNameStopwords lists words that are not an analyte name on their own.
func DefaultNameStopwords() []string {
	return []string{
		"total", "value", "values", "result", "results", "range", "reference", "ref", "units",
		"unit", "flag", "test", "tests", "time", "sex", "lab", "laboratory", "report", "fasting",
		"status", "final", "preliminary", "sample", "normal", "high", "low", "level", "levels",
		"comment", "comments", "note", "notes", "in", "of", "and", "the", "or", "to", "see", "per",
		"is", "was", "your", "interval", "abnormal", "critical", "within", "above", "below",
		"serum", "plasma", "blood", "urine", "direct", "calculated", "calc",
	}
}

// DefaultExtractionConfig returns the engine defaults.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		StrategyConfidence:      DefaultStrategyConfidence(),
		MinConfidence:           50,
		ValueEpsilon:            0.01,
		UnknownConfidence:       10,
		CorroborationBonus:      5,
		ImplausibleValuePenalty: 20,
		MaxPlausibleValue:       100000,
		StrongThreshold:         5,
		WeakThreshold:           3,
		HintBonus:               2,
		NameBlacklist:           DefaultNameBlacklist(),
		NameStopwords:           DefaultNameStopwords(),
		MinLetterRatio:          0.5,
		MaxNameLength:           60,
		MaxBacktrackWords:       3,
		GenotypeWindow:          40,
		ContextLines:            1,
		ContainmentMinLength:    4,
		Parallel:                true,
	}
}
