package s2_analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/pkg/logger"
)

// TechnicalEvaluator derives indicators from daily price history
// ⭐ SSOT: 기술적 지표 계산은 여기서만
type TechnicalEvaluator struct {
	prices   contracts.PriceHistoryProvider
	lookback time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

// NewTechnicalEvaluator creates a new technical evaluator
func NewTechnicalEvaluator(prices contracts.PriceHistoryProvider, lookback time.Duration, log *logger.Logger) *TechnicalEvaluator {
	return &TechnicalEvaluator{
		prices:   prices,
		lookback: lookback,
		logger:   log.Module("technical"),
		now:      time.Now,
	}
}

// Analyze fetches price history and computes indicators
func (e *TechnicalEvaluator) Analyze(ctx context.Context, ticker string) (*contracts.RawTechnical, error) {
	bars, err := e.prices.FetchPriceHistory(ctx, ticker, e.lookback)
	if err != nil {
		return nil, fmt.Errorf("fetch price history %s: %w", ticker, err)
	}

	tech, err := Compute(ticker, bars, e.now())
	if err != nil {
		e.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"bars":   len(bars),
		}).Debug("Skipping technical analysis")
		return nil, err
	}

	return tech, nil
}

// Compute derives every indicator from bars (oldest first)
func Compute(ticker string, bars []contracts.Bar, now time.Time) (*contracts.RawTechnical, error) {
	if len(bars) < contracts.MinTechnicalBars {
		return nil, fmt.Errorf("%s has %d bars: %w", ticker, len(bars), contracts.ErrInsufficientHistory)
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	price := closes[len(closes)-1]

	t := &contracts.RawTechnical{
		Ticker:       ticker,
		CurrentPrice: price,
		Bars:         len(bars),

		SMA50:  SMA(closes, 50),
		SMA200: SMA(closes, 200),
		EMA20:  EMA(closes, 20),

		RSI:        RSI(closes, RSIPeriod),
		MACD:       MACDOf(closes),
		ATR:        ATR(bars, ATRPeriod),
		Volatility: Volatility(closes),

		Return1M:  TrailingReturn(closes, Return1MDays),
		Return3M:  TrailingReturn(closes, Return3MDays),
		Return6M:  TrailingReturn(closes, Return6MDays),
		ReturnYTD: YTDReturn(bars, now),

		AvgVolume:     AverageVolume(bars),
		VolumeTrend:   VolumeTrendOf(bars),
		TrendStrength: TrendStrength(closes),
	}

	t.PriceVsSMA50 = PriceVsMA(price, t.SMA50)
	t.PriceVsSMA200 = PriceVsMA(price, t.SMA200)
	t.Support, t.Resistance = SupportResistance(bars, LevelWindow)
	t.Trend = ClassifyTrend(price, t.SMA50, t.SMA200)

	return t, nil
}

// TechnicalScore rates trend, RSI, SMA50 distance and 3-month return on a 0-100 scale.
// Trend always counts; the others count only when present.
func TechnicalScore(t *contracts.RawTechnical) float64 {
	if t == nil {
		return 0
	}

	var points, available float64

	available += 30
	switch t.Trend {
	case contracts.TrendStrongUp:
		points += 30
	case contracts.TrendUp:
		points += 20
	case contracts.TrendSideways:
		points += 10
	}

	if t.RSI != nil {
		available += 20
		rsi := *t.RSI
		switch {
		case rsi >= 40 && rsi <= 60:
			points += 20
		case (rsi >= 30 && rsi < 40) || (rsi > 60 && rsi <= 70):
			points += 15
		case rsi < 30:
			points += 10
		}
	}

	if t.PriceVsSMA50 != nil {
		available += 25
		d := *t.PriceVsSMA50
		switch {
		case d > 5:
			points += 25
		case d > 0:
			points += 20
		case d > -5:
			points += 10
		}
	}

	if t.Return3M != nil {
		available += 25
		r := *t.Return3M
		switch {
		case r > 20:
			points += 25
		case r > 10:
			points += 20
		case r > 0:
			points += 15
		case r > -10:
			points += 5
		}
	}

	return points / available * 100
}
