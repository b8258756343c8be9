package s0_universe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/pkg/logger"
	"github.com/wonny/gemscreener/pkg/redis"
)

// DefaultCacheExpiry is the default ticker-list lifetime
const DefaultCacheExpiry = 24 * time.Hour

// cacheEntry is the persisted ticker list
type cacheEntry struct {
	Market    contracts.Market `json:"market"`
	Timestamp time.Time        `json:"timestamp"`
	Tickers   []string         `json:"tickers"`
	Count     int              `json:"count"`
}

func newCacheEntry(market contracts.Market, tickers []string, now time.Time) cacheEntry {
	return cacheEntry{
		Market:    market,
		Timestamp: now,
		Tickers:   tickers,
		Count:     len(tickers),
	}
}

// valid checks structure and expiry
func (e *cacheEntry) valid(expiry time.Duration, now time.Time) bool {
	if e.Timestamp.IsZero() || e.Count != len(e.Tickers) {
		return false
	}
	return now.Sub(e.Timestamp) < expiry
}

// cacheMarkets resolves the market argument of Clear; empty means all
func cacheMarkets(market contracts.Market) []contracts.Market {
	if market == "" {
		return contracts.AllMarkets
	}
	return []contracts.Market{market}
}

// ============================================================================
// File cache
// ============================================================================

// FileTickerCache stores ticker lists as JSON files under a directory
type FileTickerCache struct {
	dir    string
	expiry time.Duration
	logger *logger.Logger
	now    func() time.Time
}

// NewFileTickerCache creates a file-backed ticker cache
func NewFileTickerCache(dir string, expiry time.Duration, log *logger.Logger) *FileTickerCache {
	if expiry <= 0 {
		expiry = DefaultCacheExpiry
	}
	return &FileTickerCache{
		dir:    dir,
		expiry: expiry,
		logger: log.Module("ticker_cache"),
		now:    time.Now,
	}
}

func (c *FileTickerCache) path(market contracts.Market) string {
	return filepath.Join(c.dir, fmt.Sprintf("screened_stocks_%s.json", market.Key()))
}

func (c *FileTickerCache) read(market contracts.Market) (*cacheEntry, error) {
	data, err := os.ReadFile(c.path(market))
	if err != nil {
		return nil, err
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.path(market), err)
	}
	return &entry, nil
}

// Load returns the cached list and whether it is fresh.
// Missing or corrupt files are a miss, not an error.
func (c *FileTickerCache) Load(ctx context.Context, market contracts.Market) ([]string, bool, error) {
	entry, err := c.read(market)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.WithError(err).Warn("Ignoring unreadable ticker cache")
		}
		return nil, false, nil
	}

	if !entry.valid(c.expiry, c.now()) {
		c.logger.WithField("market", market.String()).Info("Ticker cache expired")
		return nil, false, nil
	}
	return entry.Tickers, true, nil
}

// Save writes the list atomically
func (c *FileTickerCache) Save(ctx context.Context, market contracts.Market, tickers []string) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.MarshalIndent(newCacheEntry(market, tickers, c.now()), "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	tmp := c.path(market) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, c.path(market)); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"market":  market.String(),
		"tickers": len(tickers),
	}).Debug("Ticker cache saved")
	return nil
}

// Clear removes the cache file(s); empty market clears all
func (c *FileTickerCache) Clear(ctx context.Context, market contracts.Market) error {
	for _, m := range cacheMarkets(market) {
		if err := os.Remove(c.path(m)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("clear %s cache: %w", m, err)
		}
	}
	return nil
}

// Info describes the cached list
func (c *FileTickerCache) Info(ctx context.Context, market contracts.Market) (*contracts.CacheInfo, error) {
	info := &contracts.CacheInfo{Market: market, Location: c.path(market)}

	entry, err := c.read(market)
	if errors.Is(err, os.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return nil, err
	}

	now := c.now()
	info.Exists = true
	info.Valid = entry.valid(c.expiry, now)
	info.Count = len(entry.Tickers)
	info.Timestamp = entry.Timestamp
	info.Age = now.Sub(entry.Timestamp)
	return info, nil
}

// ============================================================================
// Redis cache
// ============================================================================

// RedisTickerCache stores ticker lists in redis with TTL = expiry
type RedisTickerCache struct {
	cache  *redis.Cache
	expiry time.Duration
	now    func() time.Time
}

// NewRedisTickerCache creates a redis-backed ticker cache
func NewRedisTickerCache(cache *redis.Cache, expiry time.Duration) *RedisTickerCache {
	if expiry <= 0 {
		expiry = DefaultCacheExpiry
	}
	return &RedisTickerCache{
		cache:  cache,
		expiry: expiry,
		now:    time.Now,
	}
}

func tickerKey(market contracts.Market) string {
	return redis.TickerListKey(market.Key())
}

// Load returns the cached list; presence implies freshness since redis expires the key
func (c *RedisTickerCache) Load(ctx context.Context, market contracts.Market) ([]string, bool, error) {
	var entry cacheEntry
	found, err := c.cache.Get(ctx, tickerKey(market), &entry)
	if err != nil || !found {
		return nil, false, err
	}
	return entry.Tickers, entry.valid(c.expiry, c.now()), nil
}

// Save stores the list with TTL = expiry
func (c *RedisTickerCache) Save(ctx context.Context, market contracts.Market, tickers []string) error {
	return c.cache.Set(ctx, tickerKey(market), newCacheEntry(market, tickers, c.now()), c.expiry)
}

// Clear deletes the key(s); empty market clears all
func (c *RedisTickerCache) Clear(ctx context.Context, market contracts.Market) error {
	for _, m := range cacheMarkets(market) {
		if err := c.cache.Delete(ctx, tickerKey(m)); err != nil {
			return fmt.Errorf("clear %s cache: %w", m, err)
		}
	}
	return nil
}

// Info describes the cached list
func (c *RedisTickerCache) Info(ctx context.Context, market contracts.Market) (*contracts.CacheInfo, error) {
	info := &contracts.CacheInfo{Market: market, Location: "redis:" + tickerKey(market)}

	var entry cacheEntry
	found, err := c.cache.Get(ctx, tickerKey(market), &entry)
	if err != nil {
		return nil, err
	}
	if !found {
		return info, nil
	}

	now := c.now()
	info.Exists = true
	info.Valid = entry.valid(c.expiry, now)
	info.Count = len(entry.Tickers)
	info.Timestamp = entry.Timestamp
	info.Age = now.Sub(entry.Timestamp)
	return info, nil
}

// NewTickerCache picks redis when enabled, otherwise files under dir
func NewTickerCache(client *redis.Client, dir string, expiry time.Duration, log *logger.Logger) contracts.TickerCache {
	if client != nil && client.Enabled() {
		return NewRedisTickerCache(redis.NewCache(client, "gemscreener"), expiry)
	}
	return NewFileTickerCache(dir, expiry, log)
}
