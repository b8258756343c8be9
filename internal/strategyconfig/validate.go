package strategyconfig

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/gemscreener/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var structValidator = validator.New()

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Struct tags ===
	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return ValidationError{
				Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
				Message: fmt.Sprintf("failed '%s' constraint (value=%v)", fe.Tag(), fe.Value()),
			}
		}
		return ValidationError{"config", err.Error()}
	}

	// === Sector benchmarks ===
	if _, ok := cfg.SectorBenchmarks[DefaultSector]; !ok {
		return ValidationError{"sector_benchmarks", "Default entry is required"}
	}
	for _, sector := range sortedSectors(cfg.SectorBenchmarks) {
		w := cfg.SectorBenchmarks[sector].Weights
		if err := validateWeightsSum([]float64{w.Growth, w.Profitability, w.Valuation}, 1.0, 1e-6); err != nil {
			return ValidationError{fmt.Sprintf("sector_benchmarks[%s].weights", sector), err.Error()}
		}
	}

	// === Actions ===
	a := cfg.Actions
	if !(a.StrongBuy.CompositeMin > a.Buy.CompositeMin && a.Buy.CompositeMin > a.Speculative.CompositeMin) {
		return ValidationError{"actions", "composite_min must strictly decrease strong_buy > buy > speculative"}
	}
	for i, rule := range a.Alternate {
		if rule.TechnicalMin != nil && rule.TechnicalMax != nil && *rule.TechnicalMin >= *rule.TechnicalMax {
			return ValidationError{fmt.Sprintf("actions.alternate[%d]", i), "technical_min must be < technical_max"}
		}
	}

	// === Valuation weights ===
	vw := cfg.ValuationWeights
	if vw.EPSGrowth+vw.ROE+vw.DebtEquity+vw.PE+vw.PEG+vw.FCFYield <= 0 {
		return ValidationError{"valuation_weights", "at least one weight must be positive"}
	}

	// === Markets ===
	for _, m := range contracts.AllMarkets {
		mc, _ := cfg.Market(m)
		field := "markets." + m.Key()
		if mc.Name != string(m) {
			return ValidationError{field + ".name", fmt.Sprintf("must be %s, got %s", m, mc.Name)}
		}
		if err := validateBand(mc.ValuationThresholds.EPSGrowth, true); err != nil {
			return ValidationError{field + ".valuation_thresholds.eps_growth", err.Error()}
		}
		if err := validateBand(mc.ValuationThresholds.ROE, true); err != nil {
			return ValidationError{field + ".valuation_thresholds.roe", err.Error()}
		}
		if err := validateBand(mc.ValuationThresholds.DebtEquity, false); err != nil {
			return ValidationError{field + ".valuation_thresholds.debt_equity", err.Error()}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	for _, m := range contracts.AllMarkets {
		mc, _ := cfg.Market(m)
		if len(mc.Filters.SectorsInclude) > 0 && len(mc.Filters.SectorsExclude) > 0 {
			warnings = append(warnings, Warning{
				Code:    "SECTOR_LISTS_OVERLAP",
				Message: fmt.Sprintf("%s: both sectors_include and sectors_exclude are set; exclude is checked first", m),
			})
		}
		if mc.Filters.PERatioMaxFallback < mc.Filters.PEGRatioMax {
			warnings = append(warnings, Warning{
				Code:    "PE_FALLBACK_TIGHT",
				Message: fmt.Sprintf("%s: pe_ratio_max_fallback is tighter than peg_ratio_max", m),
			})
		}
	}

	if cfg.Pipeline.BatchPause == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_BATCH_PAUSE",
			Message: "batch_pause = 0: provider throttling likely on large universes",
		})
	}

	return warnings
}

// === Helper Functions ===

func validateWeightsSum(weights []float64, target float64, epsilon float64) error {
	if len(weights) == 0 {
		return errors.New("must not be empty")
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-target) > epsilon {
		return fmt.Errorf("must sum to %.2f, got %.4f", target, sum)
	}
	return nil
}

// validateBand: higherIsBetter면 excellent >= good, 아니면 excellent <= good
func validateBand(b Band, higherIsBetter bool) error {
	if higherIsBetter && b.Excellent < b.Good {
		return errors.New("excellent must be >= good")
	}
	if !higherIsBetter && b.Excellent > b.Good {
		return errors.New("excellent must be <= good")
	}
	return nil
}

func sortedSectors(m map[string]SectorBenchmark) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
