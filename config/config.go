package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Catalog    CatalogConfig
	Diary      DiaryConfig
	External   ExternalConfig
	Search     SearchConfig
	Autofill   AutofillConfig
	Units      UnitsConfig
	Classifier ClassifierConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// IsProduction reports whether the server runs in production mode
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// CatalogConfig selects the food catalog store
type CatalogConfig struct {
	Type       string `mapstructure:"type"` // "memory" or "sqlite"
	SQLitePath string `mapstructure:"sqlite_path"`
	SeedFile   string `mapstructure:"seed_file"` // optional .json or .csv imported at startup
}

// DiaryConfig selects the diary and goals store
type DiaryConfig struct {
	Type string `mapstructure:"type"` // "memory", "sqlite" or "postgres"
	DSN  string `mapstructure:"dsn"`
}

// ExternalConfig holds external nutrition database configuration
type ExternalConfig struct {
	Provider             string        `mapstructure:"provider"` // "none", "openfoodfacts", "usda" or "chain"
	USDAAPIKey           string        `mapstructure:"usda_api_key"`
	USDABaseURL          string        `mapstructure:"usda_base_url"`
	OpenFoodFactsBaseURL string        `mapstructure:"openfoodfacts_base_url"`
	CacheTTL             time.Duration `mapstructure:"cache_ttl"`
	Timeout              time.Duration `mapstructure:"timeout"`
}

// SearchConfig tunes catalog search
type SearchConfig struct {
	ExternalThreshold int `mapstructure:"external_threshold"`
	DefaultLimit      int `mapstructure:"default_limit"`
	MaxLimit          int `mapstructure:"max_limit"`
}

// AutofillConfig controls macro autofill
type AutofillConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	FallbackCategory string `mapstructure:"fallback_category"`
}

// UnitsConfig holds unit conversion defaults
type UnitsConfig struct {
	DefaultPieceGrams float64 `mapstructure:"default_piece_grams"`
	PortionGrams      float64 `mapstructure:"portion_grams"`
}

// ClassifierConfig selects the image classifier
type ClassifierConfig struct {
	Type          string  `mapstructure:"type"` // "none" or "rekognition"
	Region        string  `mapstructure:"region"`
	MaxLabels     int     `mapstructure:"max_labels"`
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nutridiary/")

	// NUTRIDIARY_SERVER_PORT -> server.port
	v.SetEnvPrefix("NUTRIDIARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	v.SetDefault("catalog.type", "memory")
	v.SetDefault("catalog.sqlite_path", "nutridiary.db")
	v.SetDefault("catalog.seed_file", "")

	v.SetDefault("diary.type", "memory")
	v.SetDefault("diary.dsn", "")

	v.SetDefault("external.provider", "openfoodfacts")
	v.SetDefault("external.usda_api_key", "")
	v.SetDefault("external.usda_base_url", "https://api.nal.usda.gov/fdc")
	v.SetDefault("external.openfoodfacts_base_url", "https://world.openfoodfacts.org")
	v.SetDefault("external.cache_ttl", "24h")
	v.SetDefault("external.timeout", "10s")

	v.SetDefault("search.external_threshold", 10)
	v.SetDefault("search.default_limit", 20)
	v.SetDefault("search.max_limit", 100)

	v.SetDefault("autofill.enabled", true)
	v.SetDefault("autofill.fallback_category", "vegetables")

	v.SetDefault("units.default_piece_grams", 50)
	v.SetDefault("units.portion_grams", 100)

	v.SetDefault("classifier.type", "none")
	v.SetDefault("classifier.region", "us-east-1")
	v.SetDefault("classifier.max_labels", 5)
	v.SetDefault("classifier.min_confidence", 0.5)

	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Type {
	case "memory":
	case "sqlite":
		if config.Catalog.SQLitePath == "" {
			return fmt.Errorf("catalog sqlite path is required when catalog type is 'sqlite'")
		}
	default:
		return fmt.Errorf("catalog type must be 'memory' or 'sqlite', got: %s", config.Catalog.Type)
	}
	if seed := config.Catalog.SeedFile; seed != "" {
		switch strings.ToLower(filepath.Ext(seed)) {
		case ".json", ".csv":
		default:
			return fmt.Errorf("catalog seed file must be .json or .csv, got: %s", seed)
		}
	}

	switch config.Diary.Type {
	case "memory":
	case "sqlite", "postgres":
		if config.Diary.DSN == "" {
			return fmt.Errorf("diary DSN is required when diary type is '%s' (set NUTRIDIARY_DIARY_DSN)", config.Diary.Type)
		}
	default:
		return fmt.Errorf("diary type must be 'memory', 'sqlite' or 'postgres', got: %s", config.Diary.Type)
	}

	switch config.External.Provider {
	case "none", "openfoodfacts":
	case "usda", "chain":
		if config.External.USDAAPIKey == "" {
			return fmt.Errorf("USDA API key is required for provider '%s' (set NUTRIDIARY_EXTERNAL_USDA_API_KEY)",
				config.External.Provider)
		}
	default:
		return fmt.Errorf("external provider must be 'none', 'openfoodfacts', 'usda' or 'chain', got: %s",
			config.External.Provider)
	}

	switch config.Classifier.Type {
	case "none", "rekognition":
	default:
		return fmt.Errorf("classifier type must be 'none' or 'rekognition', got: %s", config.Classifier.Type)
	}

	if config.Search.DefaultLimit > config.Search.MaxLimit {
		return fmt.Errorf("search default_limit (%d) exceeds max_limit (%d)",
			config.Search.DefaultLimit, config.Search.MaxLimit)
	}

	return nil
}
