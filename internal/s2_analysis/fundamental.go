package s2_analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/strategyconfig"
	"github.com/wonny/gemscreener/pkg/logger"
)

// FundamentalEvaluator fetches and normalizes one ticker's fundamentals
type FundamentalEvaluator struct {
	provider contracts.FundamentalsProvider
	logger   *logger.Logger
}

// NewFundamentalEvaluator creates a new fundamental evaluator
func NewFundamentalEvaluator(provider contracts.FundamentalsProvider, log *logger.Logger) *FundamentalEvaluator {
	return &FundamentalEvaluator{
		provider: provider,
		logger:   log.Module("fundamental"),
	}
}

// Analyze returns normalized fundamentals or ErrNoData for an empty record
func (e *FundamentalEvaluator) Analyze(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	raw, err := e.provider.FetchFundamentals(ctx, ticker)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrNoData)
		}
		return nil, fmt.Errorf("fetch fundamentals %s: %w", ticker, err)
	}

	if raw.IsNearEmpty() {
		e.logger.WithField("ticker", ticker).Debug("Near-empty fundamentals record")
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrNoData)
	}

	f := raw.Normalize()
	return &f, nil
}

// IsFundamentallyStrong requires at least 4 of 5 basic health checks.
// An absent metric fails its check.
func IsFundamentallyStrong(f *contracts.Fundamentals, th strategyconfig.ValuationThresholds) bool {
	if f == nil {
		return false
	}

	checks := []bool{
		f.MarketCap != nil && *f.MarketCap > 0,
		f.ROE != nil && *f.ROE > th.ROE.Good,
		f.DebtToEquity != nil && *f.DebtToEquity < th.DebtEquity.Good,
		f.CurrentRatio != nil && *f.CurrentRatio > 1,
		f.EarningsGrowth != nil && *f.EarningsGrowth > 0,
	}

	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return passed >= 4
}

// AbsoluteQualityScore scores ROE, D/E, earnings growth, profit margin and P/E
// against absolute bands, 20 points each, over the metrics present
func AbsoluteQualityScore(f *contracts.Fundamentals, th strategyconfig.ValuationThresholds) float64 {
	if f == nil {
		return 0
	}

	var score, available float64

	if f.ROE != nil {
		available += 20
		switch roe := *f.ROE; {
		case roe > th.ROE.Excellent:
			score += 20
		case roe > th.ROE.Good:
			score += 15
		case roe > 10:
			score += 10
		}
	}

	if f.DebtToEquity != nil {
		available += 20
		switch de := *f.DebtToEquity; {
		case de < th.DebtEquity.Excellent:
			score += 20
		case de < th.DebtEquity.Good:
			score += 15
		case de < 2:
			score += 10
		}
	}

	if f.EarningsGrowth != nil {
		available += 20
		switch g := *f.EarningsGrowth; {
		case g > th.EPSGrowth.Excellent:
			score += 20
		case g > th.EPSGrowth.Good:
			score += 15
		case g > 5:
			score += 10
		}
	}

	if f.ProfitMargin != nil {
		available += 20
		switch pm := *f.ProfitMargin; {
		case pm > 15:
			score += 20
		case pm > 10:
			score += 15
		case pm > 5:
			score += 10
		}
	}

	if f.PERatio != nil && *f.PERatio > 0 {
		available += 20
		switch pe := *f.PERatio; {
		case pe < 15:
			score += 20
		case pe < 20:
			score += 15
		case pe < 30:
			score += 10
		}
	}

	if available == 0 {
		return 0
	}
	return score / available * 100
}

// AbsoluteValuationScore is the weighted average of per-metric fractions in [0,1],
// scaled to 0-100. Metrics that are absent are left out of the average.
func AbsoluteValuationScore(f *contracts.Fundamentals, th strategyconfig.ValuationThresholds, w strategyconfig.ValuationWeights) float64 {
	if f == nil {
		return 0
	}

	var total, weights float64
	add := func(weight, fraction float64) {
		total += weight * fraction
		weights += weight
	}

	growth := f.EPSGrowthYoY
	if growth == nil {
		growth = f.EarningsGrowth
	}
	if growth != nil {
		add(w.EPSGrowth, higherBetter(*growth, th.EPSGrowth.Excellent, th.EPSGrowth.Good, 5, 0))
	}

	if f.ROE != nil {
		add(w.ROE, higherBetter(*f.ROE, th.ROE.Excellent, th.ROE.Good, 10, 5))
	}

	if f.DebtToEquity != nil {
		de := *f.DebtToEquity
		var frac float64
		switch {
		case de <= th.DebtEquity.Excellent:
			frac = 1
		case de <= th.DebtEquity.Good:
			frac = 0.75
		case de <= 2:
			frac = 0.5
		case de <= 3:
			frac = 0.25
		}
		add(w.DebtEquity, frac)
	}

	if f.PERatio != nil && *f.PERatio > 0 {
		pe := *f.PERatio
		var frac float64
		switch {
		case pe < 10:
			frac = 0.75
		case pe <= 20:
			frac = 1
		case pe <= 30:
			frac = 0.6
		case pe <= 40:
			frac = 0.3
		}
		add(w.PE, frac)
	}

	if f.PEGRatio != nil && *f.PEGRatio > 0 {
		peg := *f.PEGRatio
		frac := 0.25
		switch {
		case peg <= 1:
			frac = 1
		case peg <= 1.5:
			frac = 0.75
		case peg <= 2:
			frac = 0.5
		}
		add(w.PEG, frac)
	}

	if f.FCFYield != nil {
		add(w.FCFYield, higherBetter(*f.FCFYield, 10, 7, 5, 3))
	}

	if weights == 0 {
		return 0
	}
	return total / weights * 100
}

// higherBetter maps v onto 1 / 0.75 / 0.5 / 0.25 / 0 by descending thresholds
func higherBetter(v, excellent, good, fair, weak float64) float64 {
	switch {
	case v >= excellent:
		return 1
	case v >= good:
		return 0.75
	case v >= fair:
		return 0.5
	case v >= weak:
		return 0.25
	default:
		return 0
	}
}
