package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8089", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, 24*time.Hour, cfg.Cache.Duration)
	assert.Equal(t, "BOTH", cfg.Screening.DailyMarkets)
	assert.Equal(t, "https://query2.finance.yahoo.com", cfg.Yahoo.QuoteBaseURL)
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("CACHE_DURATION", "6h")
	t.Setenv("YAHOO_RATE_LIMIT", "2.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 6*time.Hour, cfg.Cache.Duration)
	assert.InDelta(t, 2.5, cfg.Yahoo.RateLimit, 1e-9)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "invalid env", env: map[string]string{"ENV": "invalid"}},
		{name: "negative retries", env: map[string]string{"HTTP_MAX_RETRIES": "-1"}},
		{name: "zero rate limit", env: map[string]string{"YAHOO_RATE_LIMIT": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")
	t.Setenv("TEST_INT", "100")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_FLOAT", "1.5")
	t.Setenv("TEST_BAD_INT", "abc")

	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))
	assert.Equal(t, time.Hour, getEnvAsDuration("TEST_MISSING", "1h"))
	assert.Equal(t, 100, getEnvAsInt("TEST_INT", 50))
	assert.Equal(t, 50, getEnvAsInt("TEST_BAD_INT", 50))
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
	assert.InDelta(t, 1.5, getEnvAsFloat("TEST_FLOAT", 0), 1e-9)
	assert.Equal(t, "fallback", getEnv("TEST_MISSING", "fallback"))
}
