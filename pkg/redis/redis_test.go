package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gemscreener/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")

	allowed, remaining, err := limiter.Allow(context.Background(), YahooRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed, "all requests pass when redis is disabled")
	assert.Equal(t, YahooRateLimit.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), NSERateLimit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	var result []string
	found, err := cache.Get(ctx, TickerListKey("US"), &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, TickerListKey("US"), []string{"AAPL"}, 24*time.Hour))
	assert.NoError(t, cache.Delete(ctx, TickerListKey("US")))

	ttl, err := cache.TTL(ctx, TickerListKey("US"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), ttl)
}

func TestCache_GetOrSetDisabledCallsLoader(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")

	calls := 0
	var out []string
	err := cache.GetOrSet(context.Background(), "k", &out, TTLFundamentals, func() (interface{}, error) {
		calls++
		return []string{"INFY.NS", "TCS.NS"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"INFY.NS", "TCS.NS"}, out)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "TickerListKey", got: TickerListKey("INDIA"), expected: "universe:INDIA"},
		{name: "FundamentalsKey", got: FundamentalsKey("BRK-B"), expected: "fundamentals:BRK-B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}
