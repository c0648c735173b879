package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External data providers
	Providers ProvidersConfig

	// Index build parameters
	Index IndexConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ProvidersConfig holds external market data provider configuration.
type ProvidersConfig struct {
	YahooBaseURL        string
	AlphaVantageBaseURL string
	AlphaVantageAPIKey  string
	SP500ListURL        string
	FetchWorkers        int
	RequestTimeout      time.Duration
	RequestsPerSecond   float64
}

// IndexConfig holds the equal-weight index build parameters.
// Threaded into each component at construction so alternate parameters
// stay testable; nothing reads these as ambient globals.
type IndexConfig struct {
	// TopCompanies is the number of constituents selected per trading day.
	TopCompanies int
	// BaseValue seeds the index before the first trading day with data.
	BaseValue float64
	// LookbackDays bounds the backward walk when resolving the prior index
	// value for a date.
	LookbackDays int
	// RequireHistory makes a build fail when no prior performance exists
	// within LookbackDays instead of silently reseeding from BaseValue.
	RequireHistory bool
	// CacheTTL bounds the lifetime of read-path cache entries.
	CacheTTL time.Duration
}

// SchedulerConfig holds cron scheduling configuration.
type SchedulerConfig struct {
	// DailyIngestSpec is a cron expression (with seconds) for the daily dump.
	DailyIngestSpec string
	// BackfillDays is how far back the startup catch-up reaches when the
	// store is empty.
	BackfillDays int
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		Providers: ProvidersConfig{
			YahooBaseURL:        getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			AlphaVantageBaseURL: getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co"),
			AlphaVantageAPIKey:  getEnv("ALPHA_VANTAGE_API_KEY", ""),
			SP500ListURL:        getEnv("SP500_LIST_URL", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"),
			FetchWorkers:        getEnvAsInt("PROVIDER_FETCH_WORKERS", 5),
			RequestTimeout:      getEnvAsDuration("PROVIDER_TIMEOUT", "30s"),
			RequestsPerSecond:   getEnvAsFloat("PROVIDER_RPS", 4),
		},

		Index: IndexConfig{
			TopCompanies:   getEnvAsInt("INDEX_TOP_COMPANIES", 100),
			BaseValue:      getEnvAsFloat("INDEX_BASE_VALUE", 1000.0),
			LookbackDays:   getEnvAsInt("INDEX_LOOKBACK_DAYS", 10),
			RequireHistory: getEnvAsBool("INDEX_REQUIRE_HISTORY", false),
			CacheTTL:       getEnvAsDuration("INDEX_CACHE_TTL", "1h"),
		},

		Scheduler: SchedulerConfig{
			DailyIngestSpec: getEnv("SCHEDULER_DAILY_INGEST", "0 0 18 * * *"),
			BackfillDays:    getEnvAsInt("SCHEDULER_BACKFILL_DAYS", 30),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Index.TopCompanies <= 0 {
		return fmt.Errorf("INDEX_TOP_COMPANIES must be positive")
	}

	if c.Index.BaseValue <= 0 {
		return fmt.Errorf("INDEX_BASE_VALUE must be positive")
	}

	if c.Index.LookbackDays < 0 {
		return fmt.Errorf("INDEX_LOOKBACK_DAYS must not be negative")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
