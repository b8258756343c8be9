package s2_analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/pkg/logger"
)

type fakePrices struct {
	bars map[string][]contracts.Bar
	err  error
}

func (f *fakePrices) FetchPriceHistory(ctx context.Context, ticker string, lookback time.Duration) ([]contracts.Bar, error) {
	if f.err != nil {
		return nil, f.err
	}
	bars, ok := f.bars[ticker]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return bars, nil
}

var testNow = time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)

func TestCompute_MinimumHistory(t *testing.T) {
	_, err := Compute("SHORT", linearBars(49, 100, 1), testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrInsufficientHistory))

	tech, err := Compute("EXACT", linearBars(50, 100, 1), testNow)
	require.NoError(t, err)
	assert.Equal(t, 50, tech.Bars)
	assert.NotNil(t, tech.SMA50)
	assert.Nil(t, tech.SMA200)
	assert.Nil(t, tech.Return3M)
	assert.Equal(t, contracts.TrendUnknown, tech.Trend)
}

func TestCompute_FullHistory(t *testing.T) {
	bars := linearBars(250, 100, 0.5)

	tech, err := Compute("UP", bars, testNow)
	require.NoError(t, err)

	assert.Equal(t, "UP", tech.Ticker)
	assert.InDelta(t, 224.5, tech.CurrentPrice, 1e-9)
	assert.Equal(t, contracts.TrendStrongUp, tech.Trend)
	for name, v := range map[string]*float64{
		"sma50":          tech.SMA50,
		"sma200":         tech.SMA200,
		"ema20":          tech.EMA20,
		"rsi":            tech.RSI,
		"atr":            tech.ATR,
		"volatility":     tech.Volatility,
		"return_1m":      tech.Return1M,
		"return_3m":      tech.Return3M,
		"return_6m":      tech.Return6M,
		"return_ytd":     tech.ReturnYTD,
		"avg_volume":     tech.AvgVolume,
		"support":        tech.Support,
		"resistance":     tech.Resistance,
		"trend_strength": tech.TrendStrength,
		"price_vs_sma50": tech.PriceVsSMA50,
	} {
		assert.NotNil(t, v, name)
	}
	assert.NotNil(t, tech.MACD)
	assert.Equal(t, contracts.VolumeStable, tech.VolumeTrend)
	assert.Greater(t, *tech.PriceVsSMA50, 0.0)
}

func TestCompute_Deterministic(t *testing.T) {
	bars := linearBars(220, 80, 0.3)

	first, err := Compute("DET", bars, testNow)
	require.NoError(t, err)
	second, err := Compute("DET", bars, testNow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, TechnicalScore(first), TechnicalScore(second))
}

func TestTechnicalEvaluator_Analyze(t *testing.T) {
	prices := &fakePrices{bars: map[string][]contracts.Bar{
		"LONG":  linearBars(120, 50, 0.2),
		"SHORT": linearBars(10, 50, 0.2),
	}}
	eval := NewTechnicalEvaluator(prices, 365*24*time.Hour, logger.NewNop())
	eval.now = func() time.Time { return testNow }

	tech, err := eval.Analyze(context.Background(), "LONG")
	require.NoError(t, err)
	assert.Equal(t, 120, tech.Bars)

	_, err = eval.Analyze(context.Background(), "SHORT")
	assert.ErrorIs(t, err, contracts.ErrInsufficientHistory)

	_, err = eval.Analyze(context.Background(), "MISSING")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestTechnicalScore(t *testing.T) {
	tests := []struct {
		name     string
		tech     *contracts.RawTechnical
		expected float64
	}{
		{
			name:     "nil",
			tech:     nil,
			expected: 0,
		},
		{
			name:     "trend only, unknown",
			tech:     &contracts.RawTechnical{Trend: contracts.TrendUnknown},
			expected: 0,
		},
		{
			name:     "trend only, strong uptrend",
			tech:     &contracts.RawTechnical{Trend: contracts.TrendStrongUp},
			expected: 100,
		},
		{
			name: "uptrend with neutral RSI",
			tech: &contracts.RawTechnical{
				Trend: contracts.TrendUp,
				RSI:   contracts.F64(50),
			},
			expected: 80, // (20 + 20) / 50
		},
		{
			name: "all components",
			tech: &contracts.RawTechnical{
				Trend:        contracts.TrendSideways,
				RSI:          contracts.F64(75),
				PriceVsSMA50: contracts.F64(-2),
				Return3M:     contracts.F64(12),
			},
			expected: 40, // (10 + 0 + 10 + 20) / 100
		},
		{
			name: "oversold downtrend",
			tech: &contracts.RawTechnical{
				Trend:        contracts.TrendDown,
				RSI:          contracts.F64(25),
				PriceVsSMA50: contracts.F64(-12),
				Return3M:     contracts.F64(-25),
			},
			expected: 10, // (0 + 10 + 0 + 0) / 100
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TechnicalScore(tt.tech), 1e-9)
		})
	}
}
