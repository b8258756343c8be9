package contracts

import "math"

// MinFundamentalFields is the number of populated fields (identity strings
// included) below which a provider record is treated as "no data"
const MinFundamentalFields = 5

// UnknownSector is used when a provider reports no sector or industry
const UnknownSector = "Unknown"

// RawFundamentals is a per-ticker fundamentals record in provider units.
// Percentage-valued fields (ROE, ROA, margins, growth, dividend yield) are fractions.
// Every numeric field is three-state: nil = absent, 0 = present zero, otherwise present.
// ⭐ SSOT: 프로바이더 → 코어 원시 펀더멘털
type RawFundamentals struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`

	MarketCap    *float64 `json:"market_cap,omitempty"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	Volume       *float64 `json:"volume,omitempty"`
	AvgVolume    *float64 `json:"avg_volume,omitempty"`
	Beta         *float64 `json:"beta,omitempty"`

	PERatio        *float64 `json:"pe_ratio,omitempty"`
	ForwardPE      *float64 `json:"forward_pe,omitempty"`
	PEGRatio       *float64 `json:"peg_ratio,omitempty"`
	PriceToBook    *float64 `json:"price_to_book,omitempty"`
	PriceToSales   *float64 `json:"price_to_sales,omitempty"`
	TrailingEPS    *float64 `json:"trailing_eps,omitempty"`
	ForwardEPS     *float64 `json:"forward_eps,omitempty"`
	DividendYield  *float64 `json:"dividend_yield,omitempty"`
	PayoutRatio    *float64 `json:"payout_ratio,omitempty"`
	FreeCashFlow   *float64 `json:"free_cash_flow,omitempty"`
	OperatingCash  *float64 `json:"operating_cash_flow,omitempty"`
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"` // ratio, not percent
	CurrentRatio   *float64 `json:"current_ratio,omitempty"`
	QuickRatio     *float64 `json:"quick_ratio,omitempty"`
	ROE            *float64 `json:"roe,omitempty"`
	ROA            *float64 `json:"roa,omitempty"`
	ProfitMargin   *float64 `json:"profit_margin,omitempty"`
	OperatingMgn   *float64 `json:"operating_margin,omitempty"`
	RevenueGrowth  *float64 `json:"revenue_growth,omitempty"`
	EarningsGrowth *float64 `json:"earnings_growth,omitempty"`
	EarningsQtrGr  *float64 `json:"earnings_quarterly_growth,omitempty"`

	// EPSHistory holds reported EPS, oldest first (best-effort)
	EPSHistory []float64 `json:"eps_history,omitempty"`
}

// Fundamentals is the normalized record consumed by the core.
// Percentage-valued fields are in percent units (fraction × 100).
type Fundamentals struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`

	MarketCap    *float64 `json:"market_cap,omitempty"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	Volume       *float64 `json:"volume,omitempty"`
	AvgVolume    *float64 `json:"avg_volume,omitempty"`
	Beta         *float64 `json:"beta,omitempty"`

	PERatio        *float64 `json:"pe_ratio,omitempty"`
	ForwardPE      *float64 `json:"forward_pe,omitempty"`
	PEGRatio       *float64 `json:"peg_ratio,omitempty"`
	PriceToBook    *float64 `json:"price_to_book,omitempty"`
	PriceToSales   *float64 `json:"price_to_sales,omitempty"`
	TrailingEPS    *float64 `json:"trailing_eps,omitempty"`
	ForwardEPS     *float64 `json:"forward_eps,omitempty"`
	DividendYield  *float64 `json:"dividend_yield,omitempty"`
	PayoutRatio    *float64 `json:"payout_ratio,omitempty"`
	FreeCashFlow   *float64 `json:"free_cash_flow,omitempty"`
	OperatingCash  *float64 `json:"operating_cash_flow,omitempty"`
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"`
	CurrentRatio   *float64 `json:"current_ratio,omitempty"`
	QuickRatio     *float64 `json:"quick_ratio,omitempty"`
	ROE            *float64 `json:"roe,omitempty"`
	ROA            *float64 `json:"roa,omitempty"`
	ProfitMargin   *float64 `json:"profit_margin,omitempty"`
	OperatingMgn   *float64 `json:"operating_margin,omitempty"`
	RevenueGrowth  *float64 `json:"revenue_growth,omitempty"`
	EarningsGrowth *float64 `json:"earnings_growth,omitempty"`
	EarningsQtrGr  *float64 `json:"earnings_quarterly_growth,omitempty"`

	// Derived
	FCFYield     *float64 `json:"fcf_yield,omitempty"`
	EPSGrowthYoY *float64 `json:"eps_growth_yoy,omitempty"`
}

// F64 returns a pointer to v
func F64(v float64) *float64 {
	return &v
}

// Value dereferences p, returning 0 for nil
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// FieldCount returns the number of present numeric fields
func (r *RawFundamentals) FieldCount() int {
	n := 0
	for _, p := range r.numericFields() {
		if p != nil {
			n++
		}
	}
	return n
}

// PopulatedCount returns the number of present numeric fields plus the
// non-empty identity fields (ticker, name, sector, industry)
func (r *RawFundamentals) PopulatedCount() int {
	n := r.FieldCount()
	for _, s := range []string{r.Ticker, r.CompanyName, r.Sector, r.Industry} {
		if s != "" {
			n++
		}
	}
	return n
}

// IsNearEmpty reports whether the record carries too little data to use.
// A record with no numeric field at all is always near-empty.
func (r *RawFundamentals) IsNearEmpty() bool {
	if r == nil || r.FieldCount() == 0 {
		return true
	}
	return r.PopulatedCount() < MinFundamentalFields
}

func (r *RawFundamentals) numericFields() []*float64 {
	return []*float64{
		r.MarketCap, r.CurrentPrice, r.Volume, r.AvgVolume, r.Beta,
		r.PERatio, r.ForwardPE, r.PEGRatio, r.PriceToBook, r.PriceToSales,
		r.TrailingEPS, r.ForwardEPS, r.DividendYield, r.PayoutRatio,
		r.FreeCashFlow, r.OperatingCash, r.DebtToEquity, r.CurrentRatio, r.QuickRatio,
		r.ROE, r.ROA, r.ProfitMargin, r.OperatingMgn,
		r.RevenueGrowth, r.EarningsGrowth, r.EarningsQtrGr,
	}
}

// Normalize converts provider units to core units.
// Unit conversion happens here and nowhere else.
func (r *RawFundamentals) Normalize() Fundamentals {
	f := Fundamentals{
		Ticker:      r.Ticker,
		CompanyName: r.CompanyName,
		Sector:      r.Sector,
		Industry:    r.Industry,

		MarketCap:    finite(r.MarketCap),
		CurrentPrice: finite(r.CurrentPrice),
		Volume:       finite(r.Volume),
		AvgVolume:    finite(r.AvgVolume),
		Beta:         finite(r.Beta),

		PERatio:       finite(r.PERatio),
		ForwardPE:     finite(r.ForwardPE),
		PEGRatio:      finite(r.PEGRatio),
		PriceToBook:   finite(r.PriceToBook),
		PriceToSales:  finite(r.PriceToSales),
		TrailingEPS:   finite(r.TrailingEPS),
		ForwardEPS:    finite(r.ForwardEPS),
		PayoutRatio:   finite(r.PayoutRatio),
		FreeCashFlow:  finite(r.FreeCashFlow),
		OperatingCash: finite(r.OperatingCash),
		DebtToEquity:  finite(r.DebtToEquity),
		CurrentRatio:  finite(r.CurrentRatio),
		QuickRatio:    finite(r.QuickRatio),

		DividendYield:  percent(r.DividendYield),
		ROE:            percent(r.ROE),
		ROA:            percent(r.ROA),
		ProfitMargin:   percent(r.ProfitMargin),
		OperatingMgn:   percent(r.OperatingMgn),
		RevenueGrowth:  percent(r.RevenueGrowth),
		EarningsGrowth: percent(r.EarningsGrowth),
		EarningsQtrGr:  percent(r.EarningsQtrGr),
	}

	if f.Sector == "" {
		f.Sector = UnknownSector
	}
	if f.Industry == "" {
		f.Industry = UnknownSector
	}
	if f.CompanyName == "" {
		f.CompanyName = r.Ticker
	}
	if f.MarketCap != nil && *f.MarketCap < 0 {
		f.MarketCap = nil
	}

	if f.FreeCashFlow != nil && *f.FreeCashFlow != 0 && f.MarketCap != nil && *f.MarketCap > 0 {
		f.FCFYield = F64(*f.FreeCashFlow / *f.MarketCap * 100)
	}

	if n := len(r.EPSHistory); n >= 2 {
		prev, cur := r.EPSHistory[n-2], r.EPSHistory[n-1]
		if prev != 0 && cur != 0 && !math.IsNaN(prev) && !math.IsNaN(cur) {
			f.EPSGrowthYoY = F64((cur - prev) / math.Abs(prev) * 100)
		}
	}

	return f
}

// EffectiveVolume returns average volume, falling back to the latest session volume
func (f *Fundamentals) EffectiveVolume() *float64 {
	if f.AvgVolume != nil {
		return f.AvgVolume
	}
	return f.Volume
}

// ComputedPEG returns the stated PEG when positive, else P/E ÷ earnings growth
// when both are positive, else nil
func (f *Fundamentals) ComputedPEG() *float64 {
	if f.PEGRatio != nil && *f.PEGRatio > 0 {
		return f.PEGRatio
	}
	if f.PERatio != nil && *f.PERatio > 0 && f.EarningsGrowth != nil && *f.EarningsGrowth > 0 {
		return F64(*f.PERatio / *f.EarningsGrowth)
	}
	return nil
}

func finite(p *float64) *float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return nil
	}
	v := *p
	return &v
}

func percent(p *float64) *float64 {
	p = finite(p)
	if p == nil {
		return nil
	}
	return F64(*p * 100)
}
