package s1_prefilter

import (
	"sort"

	"github.com/wonny/gemscreener/internal/contracts"
)

// GemScore rates a pre-filter survivor on a 0-10 scale from bulk data alone.
// It is independent of the sector-relative engine.
func GemScore(f contracts.Fundamentals) float64 {
	var score float64

	// 밸류에이션 (최대 3)
	if peg := f.ComputedPEG(); peg != nil {
		switch {
		case *peg <= 1:
			score += 3
		case *peg <= 1.5:
			score += 2
		case *peg <= 2:
			score += 1
		}
	} else if pe := f.PERatio; pe != nil && *pe > 0 {
		switch {
		case *pe < 15:
			score += 2
		case *pe < 25:
			score += 1
		}
	}

	// ROE (최대 2)
	if roe := f.ROE; roe != nil {
		switch {
		case *roe >= 20:
			score += 2
		case *roe >= 15:
			score += 1.5
		case *roe >= 10:
			score += 1
		case *roe > 0:
			score += 0.5
		}
	}

	// 매출 성장 (최대 2)
	if g := f.RevenueGrowth; g != nil {
		switch {
		case *g >= 20:
			score += 2
		case *g >= 10:
			score += 1.5
		case *g > 0:
			score += 0.5
		}
	}

	// 부채비율 (최대 1.5)
	if de := f.DebtToEquity; de != nil {
		switch {
		case *de < 0.5:
			score += 1.5
		case *de < 1:
			score += 1
		case *de < 2:
			score += 0.5
		}
	}

	// 소형주 보너스 (최대 1.5)
	if mc := f.MarketCap; mc != nil && *mc > 0 {
		switch {
		case *mc < 2e9:
			score += 1.5
		case *mc < 10e9:
			score += 0.75
		}
	}

	return score
}

// FindGems scans at most scanLimit candidates (in order) and returns the top
// maxResults by gem score. Ties keep candidate order.
func FindGems(candidates []string, data map[string]contracts.Fundamentals, scanLimit, maxResults int) []contracts.HiddenGem {
	if scanLimit > 0 && len(candidates) > scanLimit {
		candidates = candidates[:scanLimit]
	}

	gems := make([]contracts.HiddenGem, 0, len(candidates))
	for _, ticker := range candidates {
		f, ok := data[ticker]
		if !ok {
			continue
		}
		gems = append(gems, contracts.HiddenGem{
			Ticker:    ticker,
			Name:      f.CompanyName,
			Sector:    f.Sector,
			GemScore:  GemScore(f),
			PERatio:   f.PERatio,
			ROE:       f.ROE,
			MarketCap: f.MarketCap,
		})
	}

	sort.SliceStable(gems, func(i, j int) bool {
		return gems[i].GemScore > gems[j].GemScore
	})

	if maxResults > 0 && len(gems) > maxResults {
		gems = gems[:maxResults]
	}
	return gems
}
