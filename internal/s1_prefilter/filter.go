package s1_prefilter

import (
	"sort"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/strategyconfig"
	"github.com/wonny/gemscreener/pkg/logger"
)

// Rejection reason codes
const (
	ReasonMarketCapTooLow       = "market_cap_too_low"
	ReasonMarketCapTooHigh      = "market_cap_too_high"
	ReasonVolumeTooLow          = "volume_too_low"
	ReasonPEGTooHigh            = "peg_too_high"
	ReasonPETooHigh             = "pe_too_high"
	ReasonPETooLow              = "pe_too_low"
	ReasonROETooLow             = "roe_too_low"
	ReasonDebtTooHigh           = "debt_too_high"
	ReasonRevenueGrowthTooLow   = "revenue_growth_too_low"
	ReasonEarningsGrowthTooLow  = "earnings_growth_too_low"
	ReasonCurrentRatioTooLow    = "current_ratio_too_low"
	ReasonProfitMarginTooLow    = "profit_margin_too_low"
	ReasonOperatingMarginTooLow = "operating_margin_too_low"
	ReasonSectorNotIncluded     = "sector_not_included"

	reasonSectorExcludedPrefix = "sector_excluded_"
)

// Filter applies per-market thresholds to bulk-fetched fundamentals
// ⭐ SSOT: S1 사전 필터는 여기서만
type Filter struct {
	logger *logger.Logger
}

// NewFilter creates a new bulk filter
func NewFilter(log *logger.Logger) *Filter {
	return &Filter{logger: log.Module("prefilter")}
}

// Apply evaluates tickers in order. Tickers missing from data are ignored;
// a nil order evaluates every ticker in data in sorted order.
func (f *Filter) Apply(order []string, data map[string]contracts.Fundamentals, cfg strategyconfig.FilterConfig) contracts.FilterResult {
	if order == nil {
		order = make([]string, 0, len(data))
		for ticker := range data {
			order = append(order, ticker)
		}
		sort.Strings(order)
	}

	result := contracts.FilterResult{
		Passed:    make([]string, 0),
		Rejected:  make(map[string]string),
		Histogram: make(contracts.RejectionHistogram),
	}

	input := 0
	for _, ticker := range order {
		fund, ok := data[ticker]
		if !ok {
			continue
		}
		input++

		if reason := CheckExclusion(&fund, cfg); reason != "" {
			result.Rejected[ticker] = reason
			result.Histogram[reason]++
			continue
		}
		result.Passed = append(result.Passed, ticker)
	}

	result.Summary = contracts.NewPassRateSummary(input, len(result.Passed))

	f.logger.WithFields(map[string]interface{}{
		"input":     result.Summary.Input,
		"passed":    result.Summary.Passed,
		"rejected":  result.Summary.Rejected,
		"pass_rate": result.Summary.PassRate,
	}).Info("Pre-filter applied")
	for _, rc := range result.Histogram.Sorted() {
		f.logger.WithFields(map[string]interface{}{
			"reason": rc.Reason,
			"count":  rc.Count,
		}).Debug("Rejection reason")
	}

	return result
}

// CheckExclusion returns the first failing reason code, or "" when the stock passes.
// Every check whose metric is absent is skipped.
func CheckExclusion(f *contracts.Fundamentals, cfg strategyconfig.FilterConfig) string {
	// 1. 시가총액
	if mc := f.MarketCap; mc != nil {
		if *mc < cfg.MarketCapMin {
			return ReasonMarketCapTooLow
		}
		if *mc > cfg.MarketCapMax {
			return ReasonMarketCapTooHigh
		}
	}

	// 2. 거래량 (평균 → 당일)
	if vol := f.EffectiveVolume(); vol != nil && *vol < cfg.VolumeMin {
		return ReasonVolumeTooLow
	}

	// 3. 밸류에이션 게이트 (PEG → 계산 PEG → P/E)
	if reason := checkValuation(f, cfg); reason != "" {
		return reason
	}

	// 4. P/E 하한
	if pe := f.PERatio; pe != nil && *pe < cfg.PERatioMin {
		return ReasonPETooLow
	}

	// 5. ROE
	if roe := f.ROE; roe != nil && *roe < cfg.ROEMin {
		return ReasonROETooLow
	}

	// 6. 부채비율
	if de := f.DebtToEquity; de != nil && *de > cfg.DebtEquityMax {
		return ReasonDebtTooHigh
	}

	// 7. 매출 성장률
	if g := f.RevenueGrowth; g != nil && *g < cfg.RevenueGrowthMin {
		return ReasonRevenueGrowthTooLow
	}

	// 8. 이익 성장률
	if g := f.EarningsGrowth; g != nil && *g < cfg.EarningsGrowthMin {
		return ReasonEarningsGrowthTooLow
	}

	// 9. 유동비율
	if cr := f.CurrentRatio; cr != nil && *cr < cfg.CurrentRatioMin {
		return ReasonCurrentRatioTooLow
	}

	// 10. 순이익률
	if pm := f.ProfitMargin; pm != nil && *pm < cfg.ProfitMarginMin {
		return ReasonProfitMarginTooLow
	}

	// 11. 영업이익률
	if om := f.OperatingMgn; om != nil && *om < cfg.OperatingMarginMin {
		return ReasonOperatingMarginTooLow
	}

	// 12. 섹터
	for _, s := range cfg.SectorsExclude {
		if f.Sector == s {
			return SectorExcludedReason(f.Sector)
		}
	}
	if len(cfg.SectorsInclude) > 0 && !contains(cfg.SectorsInclude, f.Sector) {
		return ReasonSectorNotIncluded
	}

	return ""
}

func checkValuation(f *contracts.Fundamentals, cfg strategyconfig.FilterConfig) string {
	if peg := f.ComputedPEG(); peg != nil {
		if *peg > cfg.PEGRatioMax {
			return ReasonPEGTooHigh
		}
		return ""
	}

	if pe := f.PERatio; pe != nil && *pe > 0 && *pe > cfg.PERatioMaxFallback {
		return ReasonPETooHigh
	}
	return ""
}

// SectorExcludedReason returns the reason code for an excluded sector
func SectorExcludedReason(sector string) string {
	return reasonSectorExcludedPrefix + sector
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
