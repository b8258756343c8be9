package s3_scoring

import (
	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/strategyconfig"
)

// NeutralScore is returned by a sector-relative score when no metric is present
const NeutralScore = 50.0

// ValuationScore rates P/E, ROE, D/E, earnings growth and profit margin against
// the sector benchmark. Only present metrics count toward the denominator.
func ValuationScore(f *contracts.Fundamentals, b strategyconfig.SectorBenchmark) float64 {
	var score, available float64

	// P/E (25)
	if pe := f.PERatio; pe != nil && *pe > 0 && b.TypicalPE > 0 {
		available += 25
		ratio := *pe / b.TypicalPE
		switch {
		case ratio < 0.8:
			score += 25
		case ratio < 1.0:
			score += 20
		case ratio < 1.2:
			score += 15
		case ratio < 1.5:
			score += 10
		default:
			score += 5
		}
	}

	// ROE (25), 음수 ROE는 제외
	if roe := f.ROE; roe != nil && *roe >= 0 {
		available += 25
		var ratio float64
		if b.TypicalROE > 0 {
			ratio = *roe / b.TypicalROE
		}
		switch {
		case ratio > 1.5:
			score += 25
		case ratio > 1.2:
			score += 20
		case ratio > 0.8:
			score += 15
		case ratio > 0.5:
			score += 10
		default:
			score += 5
		}
	}

	// 부채비율 (20)
	if de := f.DebtToEquity; de != nil {
		available += 20
		typical := b.TypicalDebtEquity
		switch {
		case *de < typical*0.5:
			score += 20
		case *de < typical*0.8:
			score += 16
		case *de < typical*1.2:
			score += 12
		case *de < typical*2:
			score += 8
		default:
			score += 4
		}
	}

	// 이익 성장 (20), 성장 섹터와 가치 섹터 구간이 다름
	if g := f.EarningsGrowth; g != nil {
		available += 20
		if b.GrowthFocused {
			switch {
			case *g > 20:
				score += 20
			case *g > 15:
				score += 16
			case *g > 10:
				score += 12
			case *g > 5:
				score += 8
			default:
				score += 4
			}
		} else {
			switch {
			case *g > 15:
				score += 20
			case *g > 10:
				score += 16
			case *g > 5:
				score += 14
			case *g > 0:
				score += 12
			default:
				score += 8
			}
		}
	}

	// 순이익률 (10)
	if pm := f.ProfitMargin; pm != nil && b.TypicalProfitMargin > 0 {
		available += 10
		ratio := *pm / b.TypicalProfitMargin
		switch {
		case ratio > 1.5:
			score += 10
		case ratio > 1.0:
			score += 8
		case ratio > 0.7:
			score += 6
		default:
			score += 4
		}
	}

	if available == 0 {
		return NeutralScore
	}
	return score / available * 100
}
