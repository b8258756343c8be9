package s3_scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/s2_analysis"
	"github.com/wonny/gemscreener/internal/strategyconfig"
	"github.com/wonny/gemscreener/pkg/logger"
)

// Scorer combines fundamental and technical evaluations into a ScoredStock
// ⭐ SSOT: S3 섹터 상대 점수 계산은 여기서만
type Scorer struct {
	cfg         *strategyconfig.Config
	fundamental *s2_analysis.FundamentalEvaluator
	technical   *s2_analysis.TechnicalEvaluator
	logger      *logger.Logger
}

// NewScorer creates a new scorer. The evaluators are needed only by ScoreTicker.
func NewScorer(
	cfg *strategyconfig.Config,
	fundamental *s2_analysis.FundamentalEvaluator,
	technical *s2_analysis.TechnicalEvaluator,
	log *logger.Logger,
) *Scorer {
	return &Scorer{
		cfg:         cfg,
		fundamental: fundamental,
		technical:   technical,
		logger:      log.Module("scorer"),
	}
}

// ScoreTicker runs both evaluators and scores the result.
// Any evaluator failure drops the ticker.
func (s *Scorer) ScoreTicker(ctx context.Context, market contracts.Market, ticker string) (*contracts.ScoredStock, error) {
	if s.fundamental == nil || s.technical == nil {
		return nil, fmt.Errorf("scorer has no evaluators")
	}

	f, err := s.fundamental.Analyze(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fundamental analysis: %w", err)
	}

	t, err := s.technical.Analyze(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("technical analysis: %w", err)
	}

	return s.Score(market, *f, *t)
}

// Score computes sub-scores, composite and action for one ticker
func (s *Scorer) Score(market contracts.Market, f contracts.Fundamentals, t contracts.RawTechnical) (*contracts.ScoredStock, error) {
	mcfg, err := s.cfg.Market(market)
	if err != nil {
		return nil, err
	}

	bench := s.cfg.Benchmark(f.Sector)

	valuation := ValuationScore(&f, bench)
	quality := QualityScore(&f, bench)
	technical := s2_analysis.TechnicalScore(&t)
	composite := Composite(valuation, quality, technical, bench.Weights)

	decision := DetermineAction(composite, s.cfg.Actions)
	alternate := AlternateAction(valuation, technical, s.cfg.Actions.Alternate)

	th := mcfg.ValuationThresholds
	stock := &contracts.ScoredStock{
		Ticker:      f.Ticker,
		CompanyName: f.CompanyName,
		Sector:      f.Sector,
		Industry:    f.Industry,
		Market:      market,

		ValuationScore:   Round2(valuation),
		FundamentalScore: Round2(quality),
		TechnicalScore:   Round2(technical),
		CompositeScore:   Round2(composite),

		Action:            decision.Action,
		Description:       decision.Description,
		NeedsDeepAnalysis: decision.NeedsDeepAnalysis,

		AlternateAction:        alternate.Action,
		FundamentallyStrong:    s2_analysis.IsFundamentallyStrong(&f, th),
		AbsoluteQualityScore:   Round2(s2_analysis.AbsoluteQualityScore(&f, th)),
		AbsoluteValuationScore: Round2(s2_analysis.AbsoluteValuationScore(&f, th, s.cfg.ValuationWeights)),

		CurrentPrice:   contracts.F64(t.CurrentPrice),
		MarketCap:      f.MarketCap,
		PERatio:        f.PERatio,
		ROE:            f.ROE,
		DebtToEquity:   f.DebtToEquity,
		EarningsGrowth: f.EarningsGrowth,
		Trend:          t.Trend,
		RSI:            t.RSI,

		Fundamentals: f,
		Technical:    t,
	}
	if stock.Ticker == "" {
		stock.Ticker = t.Ticker
	}

	s.logger.WithFields(map[string]interface{}{
		"ticker":    stock.Ticker,
		"action":    stock.Action,
		"valuation": stock.ValuationScore,
		"quality":   stock.FundamentalScore,
		"technical": stock.TechnicalScore,
		"composite": stock.CompositeScore,
	}).Debug("Scored")

	return stock, nil
}

// Composite weights the three sub-scores by the sector weights
func Composite(valuation, quality, technical float64, w strategyconfig.SectorWeights) float64 {
	return valuation*w.Valuation + quality*w.Profitability + technical*w.Growth
}

// Round2 rounds half away from zero to two decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
