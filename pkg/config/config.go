package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-level configuration for the screener
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Redis
	Redis RedisConfig

	// External APIs
	Yahoo YahooConfig

	// HTTP
	HTTP HTTPConfig

	// Cache
	Cache CacheConfig

	// Screening
	Screening ScreeningConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// YahooConfig holds Yahoo Finance endpoints
type YahooConfig struct {
	QuoteBaseURL string // quoteSummary host
	ChartBaseURL string // chart + crumb host
	CookieURL    string // session cookie bootstrap
	RateLimit    float64
	Burst        int
}

// HTTPConfig holds outbound HTTP settings shared by every external client
type HTTPConfig struct {
	Timeout    time.Duration
	MaxRetries int
	UserAgent  string
}

// CacheConfig holds ticker-list cache settings
type CacheConfig struct {
	Dir      string
	Duration time.Duration
}

// ScreeningConfig holds run-level settings that are not part of the strategy tables
type ScreeningConfig struct {
	StrategyConfig string // path to strategy YAML; empty = embedded defaults
	OutputDir      string
	DailySchedule  string // cron expression with seconds
	DailyMarkets   string // US, INDIA, BOTH
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Yahoo: YahooConfig{
			QuoteBaseURL: getEnv("YAHOO_QUOTE_BASE_URL", "https://query2.finance.yahoo.com"),
			ChartBaseURL: getEnv("YAHOO_CHART_BASE_URL", "https://query1.finance.yahoo.com"),
			CookieURL:    getEnv("YAHOO_COOKIE_URL", "https://fc.yahoo.com"),
			RateLimit:    getEnvAsFloat("YAHOO_RATE_LIMIT", 5),
			Burst:        getEnvAsInt("YAHOO_RATE_BURST", 10),
		},

		HTTP: HTTPConfig{
			Timeout:    getEnvAsDuration("HTTP_TIMEOUT", "30s"),
			MaxRetries: getEnvAsInt("HTTP_MAX_RETRIES", 3),
			UserAgent:  getEnv("HTTP_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		},

		Cache: CacheConfig{
			Dir:      getEnv("CACHE_DIR", "cache"),
			Duration: getEnvAsDuration("CACHE_DURATION", "24h"),
		},

		Screening: ScreeningConfig{
			StrategyConfig: getEnv("STRATEGY_CONFIG", ""),
			OutputDir:      getEnv("OUTPUT_DIR", "output"),
			DailySchedule:  getEnv("DAILY_SCHEDULE", "0 0 7 * * *"),
			DailyMarkets:   getEnv("DAILY_MARKETS", "BOTH"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("HTTP_MAX_RETRIES must not be negative")
	}

	if c.Yahoo.RateLimit <= 0 {
		return fmt.Errorf("YAHOO_RATE_LIMIT must be positive")
	}

	if c.Cache.Duration <= 0 {
		return fmt.Errorf("CACHE_DURATION must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
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
