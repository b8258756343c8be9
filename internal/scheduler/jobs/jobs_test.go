package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gemscreener/internal/brain"
	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/s0_universe"
	"github.com/wonny/gemscreener/pkg/logger"
)

type fakeRunner struct {
	daily  *brain.DailyResult
	err    error
	config brain.DailyConfig
}

func (f *fakeRunner) RunDaily(ctx context.Context, config brain.DailyConfig) (*brain.DailyResult, error) {
	f.config = config
	return f.daily, f.err
}

func TestDailyScreenJob(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{daily: &brain.DailyResult{
		Results: map[contracts.Market]*brain.RunResult{
			contracts.MarketUS: {
				Market:   contracts.MarketUS,
				TopPicks: []contracts.ScoredStock{{Ticker: "AAPL", Action: contracts.ActionBuy}},
			},
			contracts.MarketIndia: {Market: contracts.MarketIndia},
		},
	}}

	job := NewDailyScreenJob(runner, []contracts.Market{contracts.MarketUS, contracts.MarketIndia}, dir, "", logger.NewNop())
	job.now = func() time.Time { return time.Date(2024, 10, 2, 7, 0, 0, 0, time.UTC) }

	assert.Equal(t, "daily_screen", job.Name())
	assert.Equal(t, "0 0 7 * * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.True(t, runner.config.UseCache)
	assert.Len(t, runner.config.Markets, 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "markets without picks write no file")
	assert.Equal(t, "daily_gems_us_20241002_070000.csv", entries[0].Name())

	body, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(body), "AAPL")
}

func TestDailyScreenJob_Failures(t *testing.T) {
	runner := &fakeRunner{daily: &brain.DailyResult{
		Results: map[contracts.Market]*brain.RunResult{},
		Errors:  map[contracts.Market]string{contracts.MarketUS: "down"},
	}}
	job := NewDailyScreenJob(runner, nil, t.TempDir(), "0 0 8 * * *", logger.NewNop())
	assert.Equal(t, "0 0 8 * * *", job.Schedule())
	assert.ErrorContains(t, job.Run(context.Background()), "all 1 markets failed")

	runner = &fakeRunner{err: context.Canceled, daily: &brain.DailyResult{}}
	job = NewDailyScreenJob(runner, nil, t.TempDir(), "", logger.NewNop())
	assert.ErrorIs(t, job.Run(context.Background()), context.Canceled)
}

// memCache reports fixed cache info per market
type memCache struct {
	info    map[contracts.Market]*contracts.CacheInfo
	cleared []contracts.Market
}

func (m *memCache) Load(ctx context.Context, market contracts.Market) ([]string, bool, error) {
	return nil, false, nil
}

func (m *memCache) Save(ctx context.Context, market contracts.Market, tickers []string) error {
	return nil
}

func (m *memCache) Clear(ctx context.Context, market contracts.Market) error {
	m.cleared = append(m.cleared, market)
	return nil
}

func (m *memCache) Info(ctx context.Context, market contracts.Market) (*contracts.CacheInfo, error) {
	if info, ok := m.info[market]; ok {
		return info, nil
	}
	return nil, errors.New("unavailable")
}

func TestCacheCleanupJob(t *testing.T) {
	cache := &memCache{info: map[contracts.Market]*contracts.CacheInfo{
		contracts.MarketUS:    {Market: contracts.MarketUS, Exists: true, Valid: false},
		contracts.MarketIndia: {Market: contracts.MarketIndia, Exists: true, Valid: true},
	}}

	job := NewCacheCleanupJob(cache, logger.NewNop())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []contracts.Market{contracts.MarketUS}, cache.cleared, "only expired entries are removed")
}

type stubScreener struct {
	market contracts.Market
	err    error
	opts   s0_universe.Options
}

func (s *stubScreener) MarketName() contracts.Market { return s.market }

func (s *stubScreener) Screen(ctx context.Context, opts s0_universe.Options) ([]string, error) {
	s.opts = opts
	return []string{"X"}, s.err
}

func (s *stubScreener) FetchPrimary(ctx context.Context) ([]string, error)   { return nil, nil }
func (s *stubScreener) FetchSecondary(ctx context.Context) ([]string, error) { return nil, nil }

func TestUniverseRefreshJob(t *testing.T) {
	us := &stubScreener{market: contracts.MarketUS, opts: s0_universe.Options{UseCache: true}}
	india := &stubScreener{market: contracts.MarketIndia, err: errors.New("nse down")}

	job := NewUniverseRefreshJob([]s0_universe.Screener{us, india}, logger.NewNop())
	err := job.Run(context.Background())

	assert.False(t, us.opts.UseCache, "refresh bypasses the cache")
	assert.ErrorContains(t, err, "INDIA")
}
