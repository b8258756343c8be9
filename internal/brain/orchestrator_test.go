package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/s0_universe"
	"github.com/wonny/gemscreener/internal/s1_prefilter"
	"github.com/wonny/gemscreener/internal/strategyconfig"
	"github.com/wonny/gemscreener/pkg/logger"
)

// fakeScreener returns a fixed universe
type fakeScreener struct {
	market  contracts.Market
	tickers []string
	err     error
}

func (f *fakeScreener) MarketName() contracts.Market { return f.market }

func (f *fakeScreener) Screen(ctx context.Context, opts s0_universe.Options) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tickers, nil
}

func (f *fakeScreener) FetchPrimary(ctx context.Context) ([]string, error)   { return f.tickers, f.err }
func (f *fakeScreener) FetchSecondary(ctx context.Context) ([]string, error) { return nil, f.err }

// fakeFundamentals serves fixed raw records
type fakeFundamentals map[string]*contracts.RawFundamentals

func (f fakeFundamentals) FetchFundamentals(ctx context.Context, ticker string) (*contracts.RawFundamentals, error) {
	raw, ok := f[ticker]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrNotFound)
	}
	return raw, nil
}

// fakePrices serves a steady uptrend for every ticker except SHORT and PANIC
type fakePrices struct{}

func (fakePrices) FetchPriceHistory(ctx context.Context, ticker string, lookback time.Duration) ([]contracts.Bar, error) {
	switch ticker {
	case "PANIC":
		panic("boom")
	case "SHORT":
		return uptrend(30), nil
	}
	return uptrend(250), nil
}

// uptrend builds n daily bars closing 100, 101, 102, ...
func uptrend(n int) []contracts.Bar {
	start := time.Now().AddDate(0, 0, -n)
	bars := make([]contracts.Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = contracts.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return bars
}

func f64(v float64) *float64 { return &v }

// strong has every scored metric present and well above the Default benchmark
func strong(ticker string) *contracts.RawFundamentals {
	return &contracts.RawFundamentals{
		Ticker:         ticker,
		CompanyName:    ticker + " Corp",
		Sector:         "Widgets", // → Default benchmark
		MarketCap:      f64(5e9),
		CurrentPrice:   f64(349),
		Volume:         f64(1e6),
		AvgVolume:      f64(1e6),
		PERatio:        f64(15),
		PEGRatio:       f64(0.9),
		DebtToEquity:   f64(0.3),
		CurrentRatio:   f64(2.5),
		ROE:            f64(0.22),
		ProfitMargin:   f64(0.20),
		OperatingMgn:   f64(0.25),
		RevenueGrowth:  f64(0.10),
		EarningsGrowth: f64(0.20),
	}
}

// bare has identity strings plus market cap and volume, nothing else
func bare(ticker string) *contracts.RawFundamentals {
	return &contracts.RawFundamentals{
		Ticker:      ticker,
		CompanyName: ticker + " Inc",
		Sector:      "Industrials",
		Industry:    "Machinery",
		MarketCap:   f64(2e9),
		Volume:      f64(5e5),
	}
}

func testConfig(t *testing.T) *strategyconfig.Config {
	t.Helper()
	cfg, err := strategyconfig.LoadDefault()
	require.NoError(t, err)
	cfg.Pipeline.BatchPause = 0
	return cfg
}

func newTestOrchestrator(t *testing.T, cfg *strategyconfig.Config, tickers []string, data fakeFundamentals, store *ResultStore) *Orchestrator {
	t.Helper()
	snapshot, err := strategyconfig.NewSnapshot(cfg, "test")
	require.NoError(t, err)

	return NewOrchestrator(cfg, snapshot, Deps{
		Screeners: map[contracts.Market]s0_universe.Screener{
			contracts.MarketUS: &fakeScreener{market: contracts.MarketUS, tickers: tickers},
		},
		Fundamentals: data,
		Prices:       fakePrices{},
		Store:        store,
	}, logger.NewNop())
}

func TestRunMarket_EndToEnd(t *testing.T) {
	a := bare("A")
	a.MarketCap = f64(10e6)

	data := fakeFundamentals{
		"A": a,
		"B": strong("B"),
		"C": bare("C"),
	}
	store := NewResultStore()
	orch := newTestOrchestrator(t, testConfig(t), []string{"A", "B", "C"}, data, store)

	result, err := orch.RunMarket(context.Background(), RunConfig{Market: contracts.MarketUS, TopN: 5})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.NotEmpty(t, result.ConfigHash)
	assert.Empty(t, result.Diagnostic)
	assert.Equal(t, 3, result.UniverseSize)
	assert.Equal(t, 3, result.FetchStats.Fetched)
	assert.Equal(t, 0, result.FetchStats.Failed)
	assert.Equal(t, []string{StageUniverse, StagePrefilter, StageScoring, StageSelection, StageGems}, result.CompletedStages)

	// A: S1 탈락
	assert.Equal(t, s1_prefilter.ReasonMarketCapTooLow, result.Filter.Rejected["A"])
	assert.Equal(t, []string{"B", "C"}, result.Filter.Passed)
	assert.Equal(t, 1, result.Filter.Histogram[s1_prefilter.ReasonMarketCapTooLow])

	require.Len(t, result.Scored, 2)
	assert.Equal(t, 2, result.Analyzed)
	assert.Equal(t, 0, result.Failed)

	byTicker := map[string]contracts.ScoredStock{}
	for _, s := range result.Scored {
		byTicker[s.Ticker] = s
	}

	// B: 강한 펀더멘털 + 상승 추세
	b := byTicker["B"]
	assert.Equal(t, contracts.ActionStrongBuy, b.Action)
	assert.GreaterOrEqual(t, b.CompositeScore, 75.0)
	assert.Equal(t, contracts.TrendStrongUp, b.Trend)

	// C: 시총/거래량만 → 중립 점수
	c, ok := byTicker["C"]
	require.True(t, ok, "market cap and volume alone reach scoring")
	assert.Equal(t, 50.0, c.ValuationScore)
	assert.Equal(t, 50.0, c.FundamentalScore)

	require.NotEmpty(t, result.TopPicks)
	assert.Equal(t, "B", result.TopPicks[0].Ticker)
	assert.Equal(t, 1, result.ActionCounts[contracts.ActionStrongBuy])

	// every survivor was analyzed, so the gem pass has nothing to scan
	assert.Empty(t, result.HiddenGems)

	stored, ok := store.Latest(contracts.MarketUS)
	require.True(t, ok)
	assert.Equal(t, result.RunID, stored.RunID)
}

func TestRunMarket_IsolatesTickerFailures(t *testing.T) {
	data := fakeFundamentals{
		"B":     strong("B"),
		"SHORT": strong("SHORT"),
		"PANIC": strong("PANIC"),
	}
	orch := newTestOrchestrator(t, testConfig(t), []string{"SHORT", "B", "PANIC", "MISSING"}, data, nil)

	result, err := orch.RunMarket(context.Background(), RunConfig{Market: contracts.MarketUS, AnalyzeAll: true})
	require.NoError(t, err)

	assert.Equal(t, 3, result.FetchStats.Fetched)
	assert.Equal(t, 1, result.FetchStats.Failed)
	assert.Equal(t, 3, result.Analyzed)
	assert.Equal(t, 2, result.Failed, "insufficient history and panic are counted")
	require.Len(t, result.Scored, 1)
	assert.Equal(t, "B", result.Scored[0].Ticker)
}

func TestRunMarket_AnalyzeLimitAndHiddenGems(t *testing.T) {
	tickers := []string{"B1", "B2", "G1", "G2", "G3"}
	data := fakeFundamentals{}
	for _, tk := range tickers {
		data[tk] = strong(tk)
	}
	data["G2"].PERatio = f64(8)

	cfg := testConfig(t)
	cfg.Pipeline.HiddenGems.MaxResults = 2
	orch := newTestOrchestrator(t, cfg, tickers, data, nil)

	result, err := orch.RunMarket(context.Background(), RunConfig{Market: contracts.MarketUS, TopN: 1, AnalyzeLimit: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Analyzed)
	assert.Len(t, result.TopPicks, 1)
	assert.Contains(t, result.CompletedStages, StageGems)

	require.Len(t, result.HiddenGems, 2)
	for _, g := range result.HiddenGems {
		assert.NotContains(t, []string{"B1", "B2"}, g.Ticker, "analyzed tickers are not gems")
	}
}

func TestRunMarket_NoSurvivorsIsNotAnError(t *testing.T) {
	a := bare("A")
	a.MarketCap = f64(1e6)
	orch := newTestOrchestrator(t, testConfig(t), []string{"A"}, fakeFundamentals{"A": a}, nil)

	result, err := orch.RunMarket(context.Background(), RunConfig{Market: contracts.MarketUS})
	require.NoError(t, err)
	assert.Empty(t, result.Scored)
	assert.Contains(t, result.Diagnostic, "pre-filter")
	assert.Contains(t, result.Diagnostic, s1_prefilter.ReasonMarketCapTooLow)

	orch = newTestOrchestrator(t, testConfig(t), []string{"X"}, fakeFundamentals{}, nil)
	result, err = orch.RunMarket(context.Background(), RunConfig{Market: contracts.MarketUS})
	require.NoError(t, err)
	assert.Contains(t, result.Diagnostic, "no fundamentals fetched")
}

func TestRunMarket_Errors(t *testing.T) {
	orch := newTestOrchestrator(t, testConfig(t), nil, fakeFundamentals{}, nil)

	_, err := orch.RunMarket(context.Background(), RunConfig{Market: contracts.Market("JAPAN")})
	assert.Error(t, err)

	_, err = orch.RunMarket(context.Background(), RunConfig{Market: contracts.MarketIndia})
	assert.ErrorContains(t, err, "no universe screener")

	orch.screeners[contracts.MarketUS] = &fakeScreener{market: contracts.MarketUS, err: errors.New("wikipedia down")}
	_, err = orch.RunMarket(context.Background(), RunConfig{Market: contracts.MarketUS})
	assert.ErrorContains(t, err, "S0 failed")
}

func TestRunMarket_EmptyUniverseIsNotAnError(t *testing.T) {
	tests := []struct {
		name     string
		screener *fakeScreener
	}{
		{"no tickers error", &fakeScreener{market: contracts.MarketUS, err: fmt.Errorf("all sources: %w", contracts.ErrNoTickers)}},
		{"empty list", &fakeScreener{market: contracts.MarketUS}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewResultStore()
			orch := newTestOrchestrator(t, testConfig(t), nil, fakeFundamentals{}, store)
			orch.screeners[contracts.MarketUS] = tt.screener

			result, err := orch.RunMarket(context.Background(), RunConfig{Market: contracts.MarketUS})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(result.Diagnostic, "S0: "), result.Diagnostic)
			assert.Equal(t, 0, result.UniverseSize)
			assert.Equal(t, []string{StageUniverse}, result.CompletedStages)
			assert.Empty(t, result.Scored)
			assert.Empty(t, result.TopPicks)

			_, ok := store.Latest(contracts.MarketUS)
			assert.True(t, ok)
		})
	}
}

func TestRunDaily_FailingMarketDoesNotStopOthers(t *testing.T) {
	store := NewResultStore()
	orch := newTestOrchestrator(t, testConfig(t), []string{"B"}, fakeFundamentals{"B": strong("B")}, store)
	orch.screeners[contracts.MarketIndia] = &fakeScreener{market: contracts.MarketIndia, err: errors.New("nse down")}

	daily, err := orch.RunDaily(context.Background(), DailyConfig{Markets: []contracts.Market{contracts.MarketIndia, contracts.MarketUS}})
	require.NoError(t, err)

	require.Contains(t, daily.Results, contracts.MarketUS)
	assert.Len(t, daily.Results[contracts.MarketUS].TopPicks, 1)
	assert.Contains(t, daily.Errors[contracts.MarketIndia], "nse down")

	latest, ok := store.LatestDaily()
	require.True(t, ok)
	assert.Same(t, daily, latest)
	assert.Equal(t, []contracts.Market{contracts.MarketUS}, store.Markets())
}

func TestNotAnalyzed(t *testing.T) {
	assert.Equal(t, []string{"B", "D"}, notAnalyzed([]string{"A", "B", "C", "D"}, []string{"C", "A"}))
}
