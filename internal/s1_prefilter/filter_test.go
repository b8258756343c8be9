package s1_prefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/strategyconfig"
	"github.com/wonny/gemscreener/pkg/logger"
)

func testFilterConfig() strategyconfig.FilterConfig {
	return strategyconfig.FilterConfig{
		MarketCapMin:       50e6,
		MarketCapMax:       5e12,
		VolumeMin:          50_000,
		PEGRatioMax:        5,
		PERatioMaxFallback: 200,
		PERatioMin:         0,
		ROEMin:             0,
		DebtEquityMax:      10,
		RevenueGrowthMin:   -50,
		EarningsGrowthMin:  -50,
		CurrentRatioMin:    0.1,
		ProfitMarginMin:    -100,
		OperatingMarginMin: -100,
	}
}

func TestCheckExclusion(t *testing.T) {
	f64 := contracts.F64

	tests := []struct {
		name     string
		f        contracts.Fundamentals
		tweak    func(*strategyconfig.FilterConfig)
		expected string
	}{
		{
			name:     "no metrics passes",
			f:        contracts.Fundamentals{Sector: "Technology"},
			expected: "",
		},
		{
			name:     "market cap too low",
			f:        contracts.Fundamentals{MarketCap: f64(10e6)},
			expected: ReasonMarketCapTooLow,
		},
		{
			name:     "market cap too high",
			f:        contracts.Fundamentals{MarketCap: f64(10e12)},
			expected: ReasonMarketCapTooHigh,
		},
		{
			name:     "volume falls back to session volume",
			f:        contracts.Fundamentals{Volume: f64(1000)},
			expected: ReasonVolumeTooLow,
		},
		{
			name:     "average volume preferred",
			f:        contracts.Fundamentals{Volume: f64(1000), AvgVolume: f64(1e6)},
			expected: "",
		},
		{
			name:     "computed PEG 18/12 = 1.5 above max",
			f:        contracts.Fundamentals{PERatio: f64(18), EarningsGrowth: f64(12)},
			tweak:    func(c *strategyconfig.FilterConfig) { c.PEGRatioMax = 1.0 },
			expected: ReasonPEGTooHigh,
		},
		{
			name:     "computed PEG 18/12 = 1.5 within max",
			f:        contracts.Fundamentals{PERatio: f64(18), EarningsGrowth: f64(12)},
			tweak:    func(c *strategyconfig.FilterConfig) { c.PEGRatioMax = 2.0 },
			expected: "",
		},
		{
			name:     "stated PEG wins over computed",
			f:        contracts.Fundamentals{PEGRatio: f64(6), PERatio: f64(10), EarningsGrowth: f64(10)},
			expected: ReasonPEGTooHigh,
		},
		{
			name:     "zero PEG falls through to P/E fallback",
			f:        contracts.Fundamentals{PEGRatio: f64(0), PERatio: f64(250)},
			expected: ReasonPETooHigh,
		},
		{
			name:     "negative P/E skips gate, fails minimum",
			f:        contracts.Fundamentals{PERatio: f64(-5), EarningsGrowth: f64(10)},
			expected: ReasonPETooLow,
		},
		{
			name:     "ROE too low",
			f:        contracts.Fundamentals{ROE: f64(-3)},
			expected: ReasonROETooLow,
		},
		{
			name:     "debt too high",
			f:        contracts.Fundamentals{DebtToEquity: f64(12)},
			expected: ReasonDebtTooHigh,
		},
		{
			name:     "revenue growth too low",
			f:        contracts.Fundamentals{RevenueGrowth: f64(-60)},
			expected: ReasonRevenueGrowthTooLow,
		},
		{
			name:     "earnings growth too low",
			f:        contracts.Fundamentals{EarningsGrowth: f64(-70)},
			expected: ReasonEarningsGrowthTooLow,
		},
		{
			name:     "current ratio too low",
			f:        contracts.Fundamentals{CurrentRatio: f64(0.05)},
			expected: ReasonCurrentRatioTooLow,
		},
		{
			name:     "profit margin too low",
			f:        contracts.Fundamentals{ProfitMargin: f64(5)},
			tweak:    func(c *strategyconfig.FilterConfig) { c.ProfitMarginMin = 10 },
			expected: ReasonProfitMarginTooLow,
		},
		{
			name:     "operating margin too low",
			f:        contracts.Fundamentals{OperatingMgn: f64(-150)},
			expected: ReasonOperatingMarginTooLow,
		},
		{
			name:     "sector excluded",
			f:        contracts.Fundamentals{Sector: "Energy"},
			tweak:    func(c *strategyconfig.FilterConfig) { c.SectorsExclude = []string{"Energy"} },
			expected: "sector_excluded_Energy",
		},
		{
			name:     "sector not included",
			f:        contracts.Fundamentals{Sector: "Energy"},
			tweak:    func(c *strategyconfig.FilterConfig) { c.SectorsInclude = []string{"Technology"} },
			expected: ReasonSectorNotIncluded,
		},
		{
			name:     "first failing check wins",
			f:        contracts.Fundamentals{MarketCap: f64(10e6), DebtToEquity: f64(50)},
			expected: ReasonMarketCapTooLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testFilterConfig()
			if tt.tweak != nil {
				tt.tweak(&cfg)
			}
			assert.Equal(t, tt.expected, CheckExclusion(&tt.f, cfg))
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	data := map[string]contracts.Fundamentals{
		"CCC": {Ticker: "CCC", MarketCap: contracts.F64(1e9)},
		"AAA": {Ticker: "AAA", MarketCap: contracts.F64(1e6)},
		"BBB": {Ticker: "BBB", MarketCap: contracts.F64(2e9)},
		"DDD": {Ticker: "DDD", DebtToEquity: contracts.F64(20)},
	}
	filter := NewFilter(logger.NewNop())

	t.Run("keeps given order and ignores unknown tickers", func(t *testing.T) {
		result := filter.Apply([]string{"CCC", "ZZZ", "AAA", "BBB", "DDD"}, data, testFilterConfig())

		assert.Equal(t, []string{"CCC", "BBB"}, result.Passed)
		assert.Equal(t, map[string]string{
			"AAA": ReasonMarketCapTooLow,
			"DDD": ReasonDebtTooHigh,
		}, result.Rejected)
		assert.Equal(t, 2, result.Histogram.Total())
		assert.Equal(t, contracts.PassRateSummary{Input: 4, Passed: 2, Rejected: 2, PassRate: 50}, result.Summary)
	})

	t.Run("nil order uses sorted keys", func(t *testing.T) {
		result := filter.Apply(nil, data, testFilterConfig())
		assert.Equal(t, []string{"BBB", "CCC"}, result.Passed)
	})

	t.Run("empty input", func(t *testing.T) {
		result := filter.Apply([]string{}, data, testFilterConfig())
		require.NotNil(t, result.Passed)
		assert.Empty(t, result.Passed)
		assert.Equal(t, 0.0, result.Summary.PassRate)
	})
}

func TestFilter_DefaultMarketConfig(t *testing.T) {
	cfg, err := strategyconfig.LoadDefault()
	require.NoError(t, err)

	small := contracts.Fundamentals{Ticker: "A", MarketCap: contracts.F64(10e6)}
	assert.Equal(t, ReasonMarketCapTooLow, CheckExclusion(&small, cfg.Markets.US.Filters))

	solid := contracts.Fundamentals{
		Ticker:         "B",
		Sector:         "Technology",
		MarketCap:      contracts.F64(5e9),
		AvgVolume:      contracts.F64(2e6),
		PERatio:        contracts.F64(18),
		EarningsGrowth: contracts.F64(25),
		ROE:            contracts.F64(28),
		DebtToEquity:   contracts.F64(0.3),
	}
	assert.Empty(t, CheckExclusion(&solid, cfg.Markets.US.Filters))
	assert.Empty(t, CheckExclusion(&solid, cfg.Markets.India.Filters))
}
