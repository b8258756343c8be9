package contracts

// Action is the investment-tier label derived from the composite score
type Action string

const (
	ActionStrongBuy   Action = "STRONG_BUY"
	ActionBuy         Action = "BUY"
	ActionSpeculative Action = "SPECULATIVE"
	ActionAvoid       Action = "AVOID"

	// Labels produced only by the alternate threshold table
	ActionWatch Action = "WATCH"
	ActionWait  Action = "WAIT"
)

// RecommendationActions are the tiers surfaced as picks, in priority order
var RecommendationActions = []Action{ActionStrongBuy, ActionBuy, ActionSpeculative}

// Actions lists every label, primary tiers first
var Actions = []Action{ActionStrongBuy, ActionBuy, ActionSpeculative, ActionAvoid, ActionWatch, ActionWait}

// Valid reports whether a is a known label
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// IsRecommendation reports whether a is one of the pick tiers
func (a Action) IsRecommendation() bool {
	for _, r := range RecommendationActions {
		if a == r {
			return true
		}
	}
	return false
}

// ScoredStock is the immutable per-ticker scoring result
// ⭐ SSOT: S3 → S4 점수 결과 전달
type ScoredStock struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`
	Market      Market `json:"market"`

	ValuationScore   float64 `json:"valuation_score"`
	FundamentalScore float64 `json:"fundamental_score"` // sector-relative quality
	TechnicalScore   float64 `json:"technical_score"`
	CompositeScore   float64 `json:"composite_score"`

	Action            Action `json:"action"`
	Description       string `json:"description"`
	NeedsDeepAnalysis bool   `json:"needs_deep_analysis"`

	// Informational
	AlternateAction        Action  `json:"alternate_action,omitempty"`
	FundamentallyStrong    bool    `json:"fundamentally_strong"`
	AbsoluteQualityScore   float64 `json:"absolute_quality_score"`
	AbsoluteValuationScore float64 `json:"absolute_valuation_score"`

	// Display pass-through
	CurrentPrice   *float64 `json:"current_price,omitempty"`
	MarketCap      *float64 `json:"market_cap,omitempty"`
	PERatio        *float64 `json:"pe_ratio,omitempty"`
	ROE            *float64 `json:"roe,omitempty"`
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"`
	EarningsGrowth *float64 `json:"earnings_growth,omitempty"`
	Trend          Trend    `json:"trend"`
	RSI            *float64 `json:"rsi,omitempty"`

	Fundamentals Fundamentals `json:"fundamentals"`
	Technical    RawTechnical `json:"technical"`
}

// HiddenGem is a pre-filter survivor ranked by the standalone gem score
type HiddenGem struct {
	Ticker    string   `json:"ticker"`
	Name      string   `json:"name"`
	Sector    string   `json:"sector"`
	GemScore  float64  `json:"gem_score"`
	PERatio   *float64 `json:"pe_ratio,omitempty"`
	ROE       *float64 `json:"roe,omitempty"`
	MarketCap *float64 `json:"market_cap,omitempty"`
}
