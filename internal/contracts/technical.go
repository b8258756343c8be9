package contracts

import "time"

// MinTechnicalBars is the minimum history length for a technical evaluation
const MinTechnicalBars = 50

// Bar is one daily OHLCV record
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Trend classifies price position relative to its moving averages
type Trend string

const (
	TrendStrongUp Trend = "strong_uptrend"
	TrendUp       Trend = "uptrend"
	TrendSideways Trend = "sideways"
	TrendDown     Trend = "downtrend"
	TrendUnknown  Trend = "unknown"
)

// VolumeTrend compares recent volume to the preceding window
type VolumeTrend string

const (
	VolumeIncreasing VolumeTrend = "increasing"
	VolumeDecreasing VolumeTrend = "decreasing"
	VolumeStable     VolumeTrend = "stable"
)

// MACD holds the MACD line, its signal line and the histogram
type MACD struct {
	Line      float64 `json:"line"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// RawTechnical holds indicators derived from a price history.
// Every optional indicator is nil when the history is too short for it.
// ⭐ SSOT: S2 기술적 지표 결과
type RawTechnical struct {
	Ticker       string  `json:"ticker"`
	CurrentPrice float64 `json:"current_price"`
	Bars         int     `json:"bars"`

	SMA50         *float64 `json:"sma_50,omitempty"`
	SMA200        *float64 `json:"sma_200,omitempty"`
	EMA20         *float64 `json:"ema_20,omitempty"`
	PriceVsSMA50  *float64 `json:"price_vs_sma50,omitempty"`
	PriceVsSMA200 *float64 `json:"price_vs_sma200,omitempty"`
	RSI           *float64 `json:"rsi,omitempty"`
	MACD          *MACD    `json:"macd,omitempty"`
	ATR           *float64 `json:"atr,omitempty"`
	Volatility    *float64 `json:"volatility,omitempty"`
	Return1M      *float64 `json:"return_1m,omitempty"`
	Return3M      *float64 `json:"return_3m,omitempty"`
	Return6M      *float64 `json:"return_6m,omitempty"`
	ReturnYTD     *float64 `json:"return_ytd,omitempty"`
	AvgVolume     *float64 `json:"avg_volume,omitempty"`
	Support       *float64 `json:"support,omitempty"`
	Resistance    *float64 `json:"resistance,omitempty"`
	TrendStrength *float64 `json:"trend_strength,omitempty"`

	VolumeTrend VolumeTrend `json:"volume_trend,omitempty"`
	Trend       Trend       `json:"trend"`
}
