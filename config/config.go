package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cache backends
const (
	CacheMemory  = "memory"
	CacheDisk    = "disk"
	CacheSQLite  = "sqlite"
	CacheLayered = "layered"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `mapstructure:"server" yaml:"server"`
	USDA          USDAConfig          `mapstructure:"usda" yaml:"usda"`
	Nutritionix   NutritionixConfig   `mapstructure:"nutritionix" yaml:"nutritionix"`
	OpenFoodFacts OpenFoodFactsConfig `mapstructure:"openfoodfacts" yaml:"openfoodfacts"`
	FoodID        FoodIDConfig        `mapstructure:"foodid" yaml:"foodid"`
	Cache         CacheConfig         `mapstructure:"cache" yaml:"cache"`
	Matching      MatchingConfig      `mapstructure:"matching" yaml:"matching"`
	RateLimit     RateLimitConfig     `mapstructure:"ratelimit" yaml:"ratelimit"`
	Batch         BatchConfig         `mapstructure:"batch" yaml:"batch"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port" yaml:"port"`
	Environment    string   `mapstructure:"environment" yaml:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// USDAConfig holds USDA FoodData Central configuration
type USDAConfig struct {
	APIKey      string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	MinInterval time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
	PageSize    int           `mapstructure:"page_size" yaml:"page_size"`
}

// NutritionixConfig holds exact-name source configuration
type NutritionixConfig struct {
	AppID       string        `mapstructure:"app_id" yaml:"app_id"`
	AppKey      string        `mapstructure:"app_key" yaml:"app_key"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	MinInterval time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
}

// OpenFoodFactsConfig holds packaged-food source configuration
type OpenFoodFactsConfig struct {
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	UserAgent   string        `mapstructure:"user_agent" yaml:"user_agent"`
	MinInterval time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
}

// FoodIDConfig holds food-identifier source configuration
type FoodIDConfig struct {
	BaseURL         string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey          string        `mapstructure:"api_key" yaml:"api_key"`
	VerifiedPrefix  string        `mapstructure:"verified_prefix" yaml:"verified_prefix"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"`
	MinInterval     time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string         `mapstructure:"type" yaml:"type"` // memory, disk, sqlite or layered
	Dir        string         `mapstructure:"dir" yaml:"dir"`
	SQLitePath string         `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	MemoryTTL  time.Duration  `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	TTL        CacheTTLConfig `mapstructure:"ttl" yaml:"ttl"`
}

// CacheTTLConfig holds the result lifetime per tier
type CacheTTLConfig struct {
	Local       time.Duration `mapstructure:"local" yaml:"local"`
	USDA        time.Duration `mapstructure:"usda" yaml:"usda"`
	Exact       time.Duration `mapstructure:"exact" yaml:"exact"`
	Packaged    time.Duration `mapstructure:"packaged" yaml:"packaged"`
	Identifier  time.Duration `mapstructure:"identifier" yaml:"identifier"`
	Unavailable time.Duration `mapstructure:"unavailable" yaml:"unavailable"`
}

// MatchingConfig holds per-tier acceptance thresholds
type MatchingConfig struct {
	LocalThreshold      float64 `mapstructure:"local_threshold" yaml:"local_threshold"`
	USDAThreshold       float64 `mapstructure:"usda_threshold" yaml:"usda_threshold"`
	StrictUSDA          bool    `mapstructure:"strict_usda" yaml:"strict_usda"`
	PackagedThreshold   float64 `mapstructure:"packaged_threshold" yaml:"packaged_threshold"`
	IdentifierThreshold float64 `mapstructure:"identifier_threshold" yaml:"identifier_threshold"`
	EnableFuzzyMatching bool    `mapstructure:"enable_fuzzy_matching" yaml:"enable_fuzzy_matching"`
	FuzzyEditDistance   int     `mapstructure:"fuzzy_edit_distance" yaml:"fuzzy_edit_distance"`
	EnableDebugLogging  bool    `mapstructure:"enable_debug_logging" yaml:"enable_debug_logging"`
	AliasFile           string  `mapstructure:"alias_file" yaml:"alias_file"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP       int           `mapstructure:"per_ip" yaml:"per_ip"`
	BackoffBase time.Duration `mapstructure:"backoff_base" yaml:"backoff_base"`
	BackoffMax  time.Duration `mapstructure:"backoff_max" yaml:"backoff_max"`
}

// BatchConfig holds batch pacing configuration
type BatchConfig struct {
	ItemDelay   time.Duration `mapstructure:"item_delay" yaml:"item_delay"`
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from an explicit file, or searches the
// default paths when path is empty.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/mealmap/")
	}

	// Environment variable settings
	v.SetEnvPrefix("MEALMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Source defaults; a source without credentials is left out of the tier list
	v.SetDefault("usda.api_key", "")
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")
	v.SetDefault("usda.min_interval", "250ms")
	v.SetDefault("usda.page_size", 25)

	v.SetDefault("nutritionix.app_id", "")
	v.SetDefault("nutritionix.app_key", "")
	v.SetDefault("nutritionix.base_url", "https://trackapi.nutritionix.com")
	v.SetDefault("nutritionix.min_interval", "500ms")

	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "MealMap/1.0 (nutrition resolver)")
	v.SetDefault("openfoodfacts.min_interval", "1s")

	v.SetDefault("foodid.base_url", "")
	v.SetDefault("foodid.api_key", "")
	v.SetDefault("foodid.verified_prefix", "rest_")
	v.SetDefault("foodid.refresh_interval", "24h")
	v.SetDefault("foodid.min_interval", "500ms")

	// Cache defaults
	v.SetDefault("cache.type", CacheMemory)
	v.SetDefault("cache.dir", ".cache/nutrition")
	v.SetDefault("cache.sqlite_path", ".cache/nutrition.db")
	v.SetDefault("cache.memory_ttl", "1h")
	v.SetDefault("cache.ttl.local", "168h")
	v.SetDefault("cache.ttl.usda", "168h")
	v.SetDefault("cache.ttl.exact", "72h")
	v.SetDefault("cache.ttl.packaged", "72h")
	v.SetDefault("cache.ttl.identifier", "24h")
	v.SetDefault("cache.ttl.unavailable", "24h")

	// Matching defaults
	v.SetDefault("matching.local_threshold", 0.5)
	v.SetDefault("matching.usda_threshold", 0.65)
	v.SetDefault("matching.strict_usda", true)
	v.SetDefault("matching.packaged_threshold", 0.6)
	v.SetDefault("matching.identifier_threshold", 0.5)
	v.SetDefault("matching.enable_fuzzy_matching", true)
	v.SetDefault("matching.fuzzy_edit_distance", 1)
	v.SetDefault("matching.enable_debug_logging", false)
	v.SetDefault("matching.alias_file", "")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.backoff_base", "1s")
	v.SetDefault("ratelimit.backoff_max", "60s")

	// Batch defaults
	v.SetDefault("batch.item_delay", "750ms")
	v.SetDefault("batch.concurrency", 1)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Cache.Type {
	case CacheMemory, CacheDisk, CacheSQLite, CacheLayered:
	default:
		return fmt.Errorf("cache type must be one of memory, disk, sqlite, layered, got: %s", config.Cache.Type)
	}

	if (config.Cache.Type == CacheDisk || config.Cache.Type == CacheLayered) && config.Cache.Dir == "" {
		return fmt.Errorf("cache dir is required when cache type is '%s'", config.Cache.Type)
	}

	if config.Cache.Type == CacheSQLite && config.Cache.SQLitePath == "" {
		return fmt.Errorf("sqlite path is required when cache type is 'sqlite'")
	}

	for name, threshold := range map[string]float64{
		"local":      config.Matching.LocalThreshold,
		"usda":       config.Matching.USDAThreshold,
		"packaged":   config.Matching.PackagedThreshold,
		"identifier": config.Matching.IdentifierThreshold,
	} {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("%s threshold must be within [0,1], got: %v", name, threshold)
		}
	}

	if config.Nutritionix.AppID != "" && config.Nutritionix.AppKey == "" {
		return fmt.Errorf("nutritionix app key is required when app id is set (set MEALMAP_NUTRITIONIX_APP_KEY)")
	}

	if config.Batch.Concurrency < 1 {
		return fmt.Errorf("batch concurrency must be at least 1, got: %d", config.Batch.Concurrency)
	}

	return nil
}

// USDAEnabled reports whether the reference database tier can run
func (c *Config) USDAEnabled() bool { return c.USDA.APIKey != "" }

// NutritionixEnabled reports whether the exact-name tier can run
func (c *Config) NutritionixEnabled() bool {
	return c.Nutritionix.AppID != "" && c.Nutritionix.AppKey != ""
}

// FoodIDEnabled reports whether the food-identifier tier can run
func (c *Config) FoodIDEnabled() bool { return c.FoodID.BaseURL != "" }
