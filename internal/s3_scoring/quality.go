package s3_scoring

import (
	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/strategyconfig"
)

// QualityScore rates profit margin, ROE, D/E and current ratio against the
// sector benchmark
func QualityScore(f *contracts.Fundamentals, b strategyconfig.SectorBenchmark) float64 {
	var score, available float64

	if pm := f.ProfitMargin; pm != nil {
		available += 30
		typical := b.TypicalProfitMargin
		switch {
		case *pm > typical*1.3:
			score += 30
		case *pm > typical:
			score += 24
		case *pm > typical*0.7:
			score += 18
		case *pm > 0:
			score += 12
		default:
			score += 6
		}
	}

	// ROE ≤ 0 earns nothing but still counts
	if roe := f.ROE; roe != nil {
		available += 30
		typical := b.TypicalROE
		switch {
		case *roe > typical*1.5:
			score += 30
		case *roe > typical:
			score += 24
		case *roe > typical*0.7:
			score += 18
		case *roe > 0:
			score += 12
		}
	}

	if de := f.DebtToEquity; de != nil {
		available += 20
		typical := b.TypicalDebtEquity
		switch {
		case *de < typical:
			score += 20
		case *de < typical*1.5:
			score += 16
		case *de < typical*2:
			score += 12
		default:
			score += 8
		}
	}

	if cr := f.CurrentRatio; cr != nil && *cr > 0 {
		available += 20
		switch {
		case *cr > 2:
			score += 20
		case *cr > 1.5:
			score += 16
		case *cr > 1:
			score += 12
		default:
			score += 8
		}
	}

	if available == 0 {
		return NeutralScore
	}
	return score / available * 100
}
