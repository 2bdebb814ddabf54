package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Store     StoreConfig     `mapstructure:"store"`
	Search    SearchConfig    `mapstructure:"search"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Events    EventsConfig    `mapstructure:"events"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CatalogConfig holds the CSV source and the row selection of each view
type CatalogConfig struct {
	CSVPath       string        `mapstructure:"csv_path"`
	CSVURL        string        `mapstructure:"csv_url"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	VintageMarker string        `mapstructure:"vintage_marker"`
	WishlistPath  string        `mapstructure:"wishlist_path"`
	Views         ViewsConfig   `mapstructure:"views"`
}

// ViewsConfig holds the row selection of the three catalog views
type ViewsConfig struct {
	Shop    ViewConfig `mapstructure:"shop"`
	Profile ViewConfig `mapstructure:"profile"`
	Retail  ViewConfig `mapstructure:"retail"`
}

// ViewConfig lists excluded rows ("81-95" or "79"), excluded IDs and an optional allow-list
type ViewConfig struct {
	ExcludedRows []string `mapstructure:"excluded_rows"`
	ExcludedIDs  []string `mapstructure:"excluded_ids"`
	AllowList    []string `mapstructure:"allow_list"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type  string        `mapstructure:"type"` // "memory" or "redis"
	TTL   time.Duration `mapstructure:"ttl"`
	Redis RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds the Redis connection shared by the cache and the store
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// StoreConfig selects where deleted identifiers are persisted
type StoreConfig struct {
	Type       string `mapstructure:"type"` // "memory", "redis" or "sqlite"
	SQLitePath string `mapstructure:"sqlite_path"`
}

// SearchConfig holds search behaviour settings
type SearchConfig struct {
	SimulatedLatency   time.Duration `mapstructure:"simulated_latency"`
	MaxSuggestions     int           `mapstructure:"max_suggestions"`
	SuggestionDistance int           `mapstructure:"suggestion_distance"`
}

// MatchingConfig holds wishlist match selection settings
type MatchingConfig struct {
	TopMatches int  `mapstructure:"top_matches"`
	MinMatches int  `mapstructure:"min_matches"`
	Debug      bool `mapstructure:"debug"`
}

// EventsConfig holds NATS publisher settings
type EventsConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	NATSURL        string        `mapstructure:"nats_url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP  int     `mapstructure:"per_ip"` // requests per minute
	Source float64 `mapstructure:"source"` // CSV fetches per second
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from a .env file, environment variables and config files
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
	v.AddConfigPath("/etc/prelovedguru/")

	// PRELOVED_CACHE_REDIS_ADDR overrides cache.redis.addr
	v.SetEnvPrefix("PRELOVED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
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

// loadEnvFile loads .env from the working directory when present
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// Catalog defaults
	v.SetDefault("catalog.csv_path", "data/products.csv")
	v.SetDefault("catalog.csv_url", "")
	v.SetDefault("catalog.fetch_timeout", "30s")
	v.SetDefault("catalog.vintage_marker", "m")
	v.SetDefault("catalog.wishlist_path", "")
	v.SetDefault("catalog.views.shop.excluded_rows", []string{"81-95"})
	v.SetDefault("catalog.views.shop.excluded_ids", []string{"9009"})
	v.SetDefault("catalog.views.shop.allow_list", []string{})
	v.SetDefault("catalog.views.profile.excluded_rows", []string{"79", "81-95"})
	v.SetDefault("catalog.views.profile.excluded_ids", []string{})
	v.SetDefault("catalog.views.profile.allow_list", []string{})
	v.SetDefault("catalog.views.retail.excluded_rows", []string{})
	v.SetDefault("catalog.views.retail.excluded_ids", []string{})
	v.SetDefault("catalog.views.retail.allow_list", []string{
		"m1114", "m1146", "4448", "m1129", "8455", "1111",
		"1149", "2458", "4456", "2467", "0469",
	})

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.redis.addr", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "preloved:")

	// Store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.sqlite_path", "data/preloved.db")

	// Search defaults
	v.SetDefault("search.simulated_latency", "1500ms")
	v.SetDefault("search.max_suggestions", 3)
	v.SetDefault("search.suggestion_distance", 2)

	// Matching defaults
	v.SetDefault("matching.top_matches", 3)
	v.SetDefault("matching.min_matches", 2)
	v.SetDefault("matching.debug", false)

	// Events defaults
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("events.connect_timeout", "5s")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.source", 1.0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.CSVPath == "" && config.Catalog.CSVURL == "" {
		return fmt.Errorf("a catalog source is required (set PRELOVED_CATALOG_CSV_PATH or PRELOVED_CATALOG_CSV_URL)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	switch config.Store.Type {
	case "memory", "redis":
	case "sqlite":
		if config.Store.SQLitePath == "" {
			return fmt.Errorf("SQLite path is required when store type is 'sqlite'")
		}
	default:
		return fmt.Errorf("store type must be 'memory', 'redis' or 'sqlite', got: %s", config.Store.Type)
	}

	if (config.Cache.Type == "redis" || config.Store.Type == "redis") && config.Cache.Redis.Addr == "" {
		return fmt.Errorf("Redis address is required when cache or store type is 'redis'")
	}

	if config.Events.Enabled && config.Events.NATSURL == "" {
		return fmt.Errorf("NATS URL is required when events are enabled")
	}

	if config.Search.SimulatedLatency < 0 {
		return fmt.Errorf("search simulated latency must not be negative")
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("per-IP rate limit must be positive, got: %d", config.RateLimit.PerIP)
	}

	switch strings.ToLower(config.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn or error, got: %s", config.Logging.Level)
	}

	return nil
}
