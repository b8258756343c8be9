package strategyconfig

import (
	"fmt"
	"time"

	"github.com/wonny/gemscreener/internal/contracts"
)

// DefaultSector is the benchmark key used when a sector has no entry of its own
const DefaultSector = "Default"

// Config는 스크리닝 전략의 전체 설정 (실행 중 불변)
type Config struct {
	Meta             Meta                       `yaml:"meta" json:"meta"`
	Markets          Markets                    `yaml:"markets" json:"markets"`
	SectorBenchmarks map[string]SectorBenchmark `yaml:"sector_benchmarks" json:"sector_benchmarks" validate:"required,dive"`
	ValuationWeights ValuationWeights           `yaml:"valuation_weights" json:"valuation_weights"`
	Actions          Actions                    `yaml:"actions" json:"actions"`
	Pipeline         Pipeline                   `yaml:"pipeline" json:"pipeline"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id" validate:"required"`
	Version    string `yaml:"version" json:"version" validate:"required"`
}

// Markets holds one configuration per market. There is deliberately no merged entry.
type Markets struct {
	US    MarketConfig `yaml:"us" json:"us"`
	India MarketConfig `yaml:"india" json:"india"`
}

// MarketConfig 시장별 설정
type MarketConfig struct {
	Name                string              `yaml:"name" json:"name" validate:"required"`
	Currency            string              `yaml:"currency" json:"currency" validate:"required"`
	Timezone            string              `yaml:"timezone" json:"timezone" validate:"required"`
	MarketIndex         string              `yaml:"market_index" json:"market_index"`
	Filters             FilterConfig        `yaml:"filters" json:"filters"`
	ValuationThresholds ValuationThresholds `yaml:"valuation_thresholds" json:"valuation_thresholds"`
	Universe            UniverseConfig      `yaml:"universe" json:"universe"`
}

// FilterConfig S1: 벌크 사전 필터 임계값
type FilterConfig struct {
	MarketCapMin       float64  `yaml:"market_cap_min" json:"market_cap_min" validate:"gte=0"`
	MarketCapMax       float64  `yaml:"market_cap_max" json:"market_cap_max" validate:"gtfield=MarketCapMin"`
	VolumeMin          float64  `yaml:"volume_min" json:"volume_min" validate:"gte=0"`
	PEGRatioMax        float64  `yaml:"peg_ratio_max" json:"peg_ratio_max" validate:"gt=0"`
	PERatioMaxFallback float64  `yaml:"pe_ratio_max_fallback" json:"pe_ratio_max_fallback" validate:"gt=0"`
	PERatioMin         float64  `yaml:"pe_ratio_min" json:"pe_ratio_min"`
	ROEMin             float64  `yaml:"roe_min" json:"roe_min"`                                 // percent
	DebtEquityMax      float64  `yaml:"debt_equity_max" json:"debt_equity_max" validate:"gt=0"` // ratio
	RevenueGrowthMin   float64  `yaml:"revenue_growth_min" json:"revenue_growth_min"`           // percent
	EarningsGrowthMin  float64  `yaml:"earnings_growth_min" json:"earnings_growth_min"`         // percent
	CurrentRatioMin    float64  `yaml:"current_ratio_min" json:"current_ratio_min" validate:"gte=0"`
	ProfitMarginMin    float64  `yaml:"profit_margin_min" json:"profit_margin_min"`       // percent
	OperatingMarginMin float64  `yaml:"operating_margin_min" json:"operating_margin_min"` // percent
	SectorsInclude     []string `yaml:"sectors_include" json:"sectors_include"`
	SectorsExclude     []string `yaml:"sectors_exclude" json:"sectors_exclude"`
}

// ValuationThresholds 절대 기준 (진단용 점수)
type ValuationThresholds struct {
	EPSGrowth  Band `yaml:"eps_growth" json:"eps_growth"`
	ROE        Band `yaml:"roe" json:"roe"`
	DebtEquity Band `yaml:"debt_equity" json:"debt_equity"`
}

// Band is an excellent/good threshold pair
type Band struct {
	Excellent float64 `yaml:"excellent" json:"excellent"`
	Good      float64 `yaml:"good" json:"good"`
}

// UniverseConfig S0: 종목 유니버스 소스 설정
type UniverseConfig struct {
	Indices    []string `yaml:"indices" json:"indices"`
	Exchanges  []string `yaml:"exchanges" json:"exchanges" validate:"required,min=1"`
	MaxTickers int      `yaml:"max_tickers" json:"max_tickers" validate:"gte=0"` // 0 = unlimited
}

// SectorBenchmark 섹터별 기준값 및 가중치
type SectorBenchmark struct {
	TypicalPE           float64       `yaml:"typical_pe" json:"typical_pe" validate:"gt=0"`
	TypicalROE          float64       `yaml:"typical_roe" json:"typical_roe" validate:"gt=0"`
	TypicalDebtEquity   float64       `yaml:"typical_debt_equity" json:"typical_debt_equity" validate:"gt=0"`
	TypicalProfitMargin float64       `yaml:"typical_profit_margin" json:"typical_profit_margin" validate:"gt=0"`
	GrowthFocused       bool          `yaml:"growth_focused" json:"growth_focused"`
	Weights             SectorWeights `yaml:"weights" json:"weights"`
}

// SectorWeights composite 가중치 (합 = 1.0)
type SectorWeights struct {
	Growth        float64 `yaml:"growth" json:"growth" validate:"gte=0,lte=1"`               // technical
	Profitability float64 `yaml:"profitability" json:"profitability" validate:"gte=0,lte=1"` // quality
	Valuation     float64 `yaml:"valuation" json:"valuation" validate:"gte=0,lte=1"`
}

// Sum returns the sum of all weights
func (w SectorWeights) Sum() float64 {
	return w.Growth + w.Profitability + w.Valuation
}

// ValuationWeights 절대 밸류에이션 점수 가중치
type ValuationWeights struct {
	EPSGrowth  float64 `yaml:"eps_growth_yoy" json:"eps_growth_yoy" validate:"gte=0"`
	ROE        float64 `yaml:"roe" json:"roe" validate:"gte=0"`
	DebtEquity float64 `yaml:"debt_equity" json:"debt_equity" validate:"gte=0"`
	PE         float64 `yaml:"pe_ratio" json:"pe_ratio" validate:"gte=0"`
	PEG        float64 `yaml:"peg_ratio" json:"peg_ratio" validate:"gte=0"`
	FCFYield   float64 `yaml:"fcf_yield" json:"fcf_yield" validate:"gte=0"`
}

// Actions 투자 등급 테이블
type Actions struct {
	StrongBuy        ActionTier      `yaml:"strong_buy" json:"strong_buy"`
	Buy              ActionTier      `yaml:"buy" json:"buy"`
	Speculative      ActionTier      `yaml:"speculative" json:"speculative"`
	AvoidDescription string          `yaml:"avoid_description" json:"avoid_description" validate:"required"`
	Alternate        []AlternateRule `yaml:"alternate" json:"alternate" validate:"dive"`
}

// ActionTier composite 기준 등급
type ActionTier struct {
	CompositeMin      float64 `yaml:"composite_min" json:"composite_min" validate:"gte=0,lte=100"`
	Description       string  `yaml:"description" json:"description" validate:"required"`
	NeedsDeepAnalysis bool    `yaml:"needs_deep_analysis" json:"needs_deep_analysis"`
}

// AlternateRule valuation/technical 기준 등급 (참고용)
type AlternateRule struct {
	Action            contracts.Action `yaml:"action" json:"action" validate:"required"`
	ValuationMin      float64          `yaml:"valuation_min" json:"valuation_min" validate:"gte=0,lte=100"`
	TechnicalMin      *float64         `yaml:"technical_min,omitempty" json:"technical_min,omitempty"`
	TechnicalMax      *float64         `yaml:"technical_max,omitempty" json:"technical_max,omitempty"`
	Description       string           `yaml:"description" json:"description"`
	NeedsDeepAnalysis bool             `yaml:"needs_deep_analysis" json:"needs_deep_analysis"`
}

// Pipeline 실행 파라미터
type Pipeline struct {
	FetchWorkers      int           `yaml:"fetch_workers" json:"fetch_workers" validate:"gte=1"`
	BatchSize         int           `yaml:"batch_size" json:"batch_size" validate:"gte=1"`
	BatchPause        time.Duration `yaml:"batch_pause" json:"batch_pause" validate:"gte=0"`
	ScoringWorkers    int           `yaml:"scoring_workers" json:"scoring_workers" validate:"gte=1"`
	LookbackDays      int           `yaml:"lookback_days" json:"lookback_days" validate:"gte=50"`
	TopN              int           `yaml:"top_n" json:"top_n" validate:"gte=1"`
	AnalyzeMultiplier int           `yaml:"analyze_multiplier" json:"analyze_multiplier" validate:"gte=1"`
	DailyAnalyzeLimit int           `yaml:"daily_analyze_limit" json:"daily_analyze_limit" validate:"gte=1"`
	DailyTopN         int           `yaml:"daily_top_n" json:"daily_top_n" validate:"gte=1"`
	HiddenGems        HiddenGems    `yaml:"hidden_gems" json:"hidden_gems"`
}

// HiddenGems 보조 발굴 패스 설정
type HiddenGems struct {
	TriggerBelow int `yaml:"trigger_below" json:"trigger_below" validate:"gte=0"`
	ScanLimit    int `yaml:"scan_limit" json:"scan_limit" validate:"gte=0"`
	MaxResults   int `yaml:"max_results" json:"max_results" validate:"gte=0"`
}

// Lookback returns the price history window
func (p Pipeline) Lookback() time.Duration {
	return time.Duration(p.LookbackDays) * 24 * time.Hour
}

// Market returns the configuration for a single market
func (c *Config) Market(m contracts.Market) (*MarketConfig, error) {
	switch m {
	case contracts.MarketUS:
		return &c.Markets.US, nil
	case contracts.MarketIndia:
		return &c.Markets.India, nil
	default:
		return nil, fmt.Errorf("unknown market %q", m)
	}
}

// Benchmark returns the benchmark for sector, falling back to Default
func (c *Config) Benchmark(sector string) SectorBenchmark {
	if b, ok := c.SectorBenchmarks[sector]; ok {
		return b
	}
	return c.SectorBenchmarks[DefaultSector]
}

// Snapshot identifies the configuration a run was produced with
type Snapshot struct {
	ConfigHash string    `json:"config_hash"`
	StrategyID string    `json:"strategy_id"`
	Version    string    `json:"version"`
	Source     string    `json:"source"`
	LoadedAt   time.Time `json:"loaded_at"`
}
