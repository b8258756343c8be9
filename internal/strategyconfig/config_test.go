package strategyconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gemscreener/internal/contracts"
)

func TestLoadDefault(t *testing.T) {
	cfg, err := LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, "gem_screener", cfg.Meta.StrategyID)

	us, err := cfg.Market(contracts.MarketUS)
	require.NoError(t, err)
	assert.Equal(t, 50_000_000.0, us.Filters.MarketCapMin)
	assert.Equal(t, 5_000_000_000_000.0, us.Filters.MarketCapMax)
	assert.Equal(t, 50_000.0, us.Filters.VolumeMin)
	assert.Equal(t, 200.0, us.Filters.PERatioMaxFallback)
	assert.Equal(t, "USD", us.Currency)

	india, err := cfg.Market(contracts.MarketIndia)
	require.NoError(t, err)
	assert.Equal(t, 10_000.0, india.Filters.VolumeMin)
	assert.Equal(t, []string{"NSE", "BSE"}, india.Universe.Exchanges)
	assert.Contains(t, india.Universe.Indices, "NIFTY_MIDSMALLCAP_400")
	assert.Equal(t, 18.0, india.ValuationThresholds.ROE.Excellent)

	assert.Equal(t, 75.0, cfg.Actions.StrongBuy.CompositeMin)
	assert.Equal(t, 65.0, cfg.Actions.Buy.CompositeMin)
	assert.Equal(t, 50.0, cfg.Actions.Speculative.CompositeMin)
	assert.Len(t, cfg.Actions.Alternate, 4)

	assert.Equal(t, 10, cfg.Pipeline.FetchWorkers)
	assert.Equal(t, 50, cfg.Pipeline.BatchSize)
	assert.Equal(t, "1s", cfg.Pipeline.BatchPause.String())
	assert.Equal(t, 5, cfg.Pipeline.ScoringWorkers)
	assert.Equal(t, 10, cfg.Pipeline.HiddenGems.TriggerBelow)
}

func TestSectorBenchmarks(t *testing.T) {
	cfg, err := LoadDefault()
	require.NoError(t, err)

	assert.Len(t, cfg.SectorBenchmarks, 12)

	for sector, b := range cfg.SectorBenchmarks {
		assert.InDelta(t, 1.0, b.Weights.Sum(), 1e-6, "weights of %s", sector)
	}

	tech := cfg.Benchmark("Technology")
	assert.Equal(t, 30.0, tech.TypicalPE)
	assert.True(t, tech.GrowthFocused)
	assert.Equal(t, 0.40, tech.Weights.Growth)

	// unknown sector falls back to Default
	def := cfg.Benchmark("Crypto Mining")
	assert.Equal(t, cfg.SectorBenchmarks[DefaultSector], def)
	assert.Equal(t, 20.0, def.TypicalPE)
	assert.Equal(t, 15.0, def.TypicalROE)
}

func TestMarketUnknown(t *testing.T) {
	cfg, err := LoadDefault()
	require.NoError(t, err)

	_, err = cfg.Market(contracts.Market("BOTH"))
	assert.Error(t, err)
}

func TestHashDeterministic(t *testing.T) {
	cfg, err := LoadDefault()
	require.NoError(t, err)

	hash, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	cfg2, err := LoadDefault()
	require.NoError(t, err)
	hash2, err := Hash(cfg2)
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)

	cfg2.Markets.US.Filters.VolumeMin = 1
	hash3, err := Hash(cfg2)
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash3)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.yaml")
	require.NoError(t, os.WriteFile(path, DefaultYAML(), 0o644))

	cfg, snap, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, path, snap.Source)
	assert.Equal(t, cfg.Meta.StrategyID, snap.StrategyID)

	_, defSnap, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSource, defSnap.Source)
	assert.Equal(t, defSnap.ConfigHash, snap.ConfigHash)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	data := strings.Replace(string(DefaultYAML()), "  top_n: 20", "  top_n: 20\n  topn_typo: 3", 1)

	_, err := Parse([]byte(data))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "valid default",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name: "weights do not sum to one",
			mutate: func(c *Config) {
				b := c.SectorBenchmarks["Energy"]
				b.Weights.Valuation = 0.5
				c.SectorBenchmarks["Energy"] = b
			},
			wantErr: "sector_benchmarks[Energy].weights",
		},
		{
			name:    "missing default benchmark",
			mutate:  func(c *Config) { delete(c.SectorBenchmarks, DefaultSector) },
			wantErr: "Default entry is required",
		},
		{
			name: "non-positive typical value",
			mutate: func(c *Config) {
				b := c.SectorBenchmarks["Technology"]
				b.TypicalPE = 0
				c.SectorBenchmarks["Technology"] = b
			},
			wantErr: "TypicalPE",
		},
		{
			name:    "market cap min above max",
			mutate:  func(c *Config) { c.Markets.US.Filters.MarketCapMax = 1 },
			wantErr: "MarketCapMax",
		},
		{
			name:    "action thresholds not decreasing",
			mutate:  func(c *Config) { c.Actions.Buy.CompositeMin = 80 },
			wantErr: "strictly decrease",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Pipeline.FetchWorkers = 0 },
			wantErr: "FetchWorkers",
		},
		{
			name:    "market name mismatch",
			mutate:  func(c *Config) { c.Markets.India.Name = "US" },
			wantErr: "markets.india.name",
		},
		{
			name: "inverted debt band",
			mutate: func(c *Config) {
				c.Markets.US.ValuationThresholds.DebtEquity = Band{Excellent: 2, Good: 1}
			},
			wantErr: "debt_equity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadDefault()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = Validate(cfg)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateWeightsSum(t *testing.T) {
	assert.NoError(t, validateWeightsSum([]float64{0.3, 0.35, 0.35}, 1.0, 1e-6))
	assert.Error(t, validateWeightsSum([]float64{0.3, 0.3, 0.3}, 1.0, 1e-6))
	assert.Error(t, validateWeightsSum(nil, 1.0, 1e-6))
}

func TestWarn(t *testing.T) {
	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Empty(t, Warn(cfg))

	cfg.Pipeline.BatchPause = 0
	cfg.Markets.US.Filters.SectorsInclude = []string{"Technology"}
	cfg.Markets.US.Filters.SectorsExclude = []string{"Energy"}

	codes := []string{}
	for _, w := range Warn(cfg) {
		codes = append(codes, w.Code)
	}
	assert.ElementsMatch(t, []string{"SECTOR_LISTS_OVERLAP", "NO_BATCH_PAUSE"}, codes)
}
