package s2_analysis

import (
	"math"
	"time"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/gemscreener/internal/contracts"
)

// Indicator windows
const (
	RSIPeriod        = 14
	ATRPeriod        = 14
	MACDFast         = 12
	MACDSlow         = 26
	MACDSignal       = 9
	VolatilityMinLen = 30
	VolumeTrendLen   = 20
	LevelWindow      = 50
	TradingDays      = 252

	Return1MDays = 21
	Return3MDays = 63
	Return6MDays = 126
)

// SMA returns the mean of the last n values, nil if fewer than n
func SMA(values []float64, n int) *float64 {
	if n <= 0 || len(values) < n {
		return nil
	}

	sma := talib.Sma(values, n)
	last := sma[len(sma)-1]
	if math.IsNaN(last) {
		return nil
	}
	return &last
}

// EMASeries returns the exponential moving average of the whole series with
// α = 2/(n+1), seeded by the first value and no warm-up adjustment
func EMASeries(values []float64, n int) []float64 {
	if len(values) == 0 || n <= 0 {
		return nil
	}

	alpha := 2.0 / float64(n+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// EMA returns the last EMA value, nil if fewer than n values
func EMA(values []float64, n int) *float64 {
	if n <= 0 || len(values) < n {
		return nil
	}
	series := EMASeries(values, n)
	last := series[len(series)-1]
	return &last
}

// RSI uses simple rolling means of the last n gains and losses
func RSI(closes []float64, n int) *float64 {
	if n <= 0 || len(closes) < n+1 {
		return nil
	}

	var gain, loss float64
	for i := len(closes) - n; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	gain /= float64(n)
	loss /= float64(n)

	var rsi float64
	switch {
	case loss == 0 && gain == 0:
		return nil
	case loss == 0:
		rsi = 100
	default:
		rsi = 100 - 100/(1+gain/loss)
	}
	return &rsi
}

// MACDOf computes MACD(12, 26, 9); nil if fewer than 26 closes
func MACDOf(closes []float64) *contracts.MACD {
	if len(closes) < MACDSlow {
		return nil
	}

	fast := EMASeries(closes, MACDFast)
	slow := EMASeries(closes, MACDSlow)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal := EMASeries(line, MACDSignal)

	last := len(closes) - 1
	return &contracts.MACD{
		Line:      line[last],
		Signal:    signal[last],
		Histogram: line[last] - signal[last],
	}
}

// ATR is the mean of the last n true ranges; nil if fewer than n+1 bars
func ATR(bars []contracts.Bar, n int) *float64 {
	if n <= 0 || len(bars) < n+1 {
		return nil
	}

	trs := make([]float64, 0, n)
	for i := len(bars) - n; i < len(bars); i++ {
		b, prevClose := bars[i], bars[i-1].Close
		tr := math.Max(b.High-b.Low, math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
		trs = append(trs, tr)
	}

	atr := stat.Mean(trs, nil)
	return &atr
}

// DailyReturns returns close-to-close fractional returns
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		out = append(out, (closes[i]-closes[i-1])/closes[i-1])
	}
	return out
}

// Volatility is the annualized sample standard deviation of daily returns in percent
func Volatility(closes []float64) *float64 {
	if len(closes) < VolatilityMinLen {
		return nil
	}
	returns := DailyReturns(closes)
	if len(returns) < 2 {
		return nil
	}

	v := stat.StdDev(returns, nil) * math.Sqrt(TradingDays) * 100
	return &v
}

// TrailingReturn compares the last close with the close d bars from the end
func TrailingReturn(closes []float64, d int) *float64 {
	if d <= 0 || len(closes) < d {
		return nil
	}
	base := closes[len(closes)-d]
	if base == 0 {
		return nil
	}
	r := (closes[len(closes)-1] - base) / base * 100
	return &r
}

// YTDReturn uses the first and last bars of the calendar year of now
func YTDReturn(bars []contracts.Bar, now time.Time) *float64 {
	year := now.Year()
	var first, last *contracts.Bar
	count := 0
	for i := range bars {
		if bars[i].Date.Year() != year {
			continue
		}
		if first == nil {
			first = &bars[i]
		}
		last = &bars[i]
		count++
	}
	if count < 2 || first.Close == 0 {
		return nil
	}

	r := (last.Close - first.Close) / first.Close * 100
	return &r
}

// AverageVolume is the mean of all volumes
func AverageVolume(bars []contracts.Bar) *float64 {
	if len(bars) == 0 {
		return nil
	}
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	avg := stat.Mean(vols, nil)
	return &avg
}

// VolumeTrendOf compares the last 10 volumes with the 10 before them
func VolumeTrendOf(bars []contracts.Bar) contracts.VolumeTrend {
	if len(bars) < VolumeTrendLen {
		return ""
	}

	half := VolumeTrendLen / 2
	window := bars[len(bars)-VolumeTrendLen:]
	var older, recent float64
	for i, b := range window {
		if i < half {
			older += b.Volume
		} else {
			recent += b.Volume
		}
	}
	older /= float64(half)
	recent /= float64(half)

	switch {
	case recent > older*1.2:
		return contracts.VolumeIncreasing
	case recent < older*0.8:
		return contracts.VolumeDecreasing
	default:
		return contracts.VolumeStable
	}
}

// SupportResistance returns min low and max high over the last window bars
func SupportResistance(bars []contracts.Bar, window int) (*float64, *float64) {
	if len(bars) == 0 || window <= 0 {
		return nil, nil
	}
	if window > len(bars) {
		window = len(bars)
	}

	tail := bars[len(bars)-window:]
	lows := make([]float64, len(tail))
	highs := make([]float64, len(tail))
	for i, b := range tail {
		lows[i] = b.Low
		highs[i] = b.High
	}

	// talib zero-fills below a period of 2
	if window < 2 {
		support, resistance := lows[0], highs[0]
		return &support, &resistance
	}

	support := talib.Min(lows, window)[len(lows)-1]
	resistance := talib.Max(highs, window)[len(highs)-1]
	return &support, &resistance
}

// ClassifyTrend labels price position against SMA50 and SMA200
func ClassifyTrend(price float64, sma50, sma200 *float64) contracts.Trend {
	if sma50 == nil || sma200 == nil {
		return contracts.TrendUnknown
	}

	switch {
	case price > *sma50 && *sma50 > *sma200:
		return contracts.TrendStrongUp
	case price > *sma50:
		return contracts.TrendUp
	case price < *sma50 && *sma50 < *sma200:
		return contracts.TrendDown
	default:
		return contracts.TrendSideways
	}
}

// TrendStrength is the share of up-days damped by return volatility, in [0, 100]
func TrendStrength(closes []float64) *float64 {
	if len(closes) < contracts.MinTechnicalBars {
		return nil
	}
	returns := DailyReturns(closes)
	if len(returns) == 0 {
		return nil
	}

	up := 0
	for _, r := range returns {
		if r > 0 {
			up++
		}
	}
	strength := float64(up) / float64(len(returns)) * 100

	if len(returns) > 1 {
		if sd := stat.StdDev(returns, nil); sd > 0 {
			strength *= 1 - math.Min(sd*10, 0.5)
		}
	}

	strength = math.Min(math.Max(strength, 0), 100)
	return &strength
}

// PriceVsMA returns the percent distance of price from ma
func PriceVsMA(price float64, ma *float64) *float64 {
	if ma == nil || *ma <= 0 {
		return nil
	}
	d := (price - *ma) / *ma * 100
	return &d
}
