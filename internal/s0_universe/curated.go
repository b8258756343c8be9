package s0_universe

// 1·2차 소스가 모두 실패했을 때 사용하는 대형주 목록

var curatedUS = []string{
	// Technology
	"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "AVGO", "ORCL", "CRM", "ADBE",
	"CSCO", "INTC", "AMD", "QCOM", "TXN", "IBM", "INTU", "NOW", "AMAT", "MU",
	// Financial Services
	"JPM", "BAC", "WFC", "C", "GS", "MS", "BLK", "SCHW", "AXP", "V", "MA", "SPGI",
	// Healthcare
	"UNH", "JNJ", "LLY", "PFE", "ABBV", "TMO", "MRK", "ABT", "DHR", "AMGN", "ISRG", "VRTX",
	// Consumer
	"TSLA", "HD", "NKE", "MCD", "SBUX", "LOW", "TJX", "BKNG", "WMT", "PG", "KO", "PEP", "COST",
	// Industrials / Energy / Other
	"CAT", "GE", "HON", "UPS", "RTX", "LMT", "DE", "UNP", "XOM", "CVX", "COP", "NEE",
	"LIN", "APD", "AMT", "PLD", "DIS", "NFLX", "TMUS", "VZ", "BRK-B",
}

var curatedIndia = []string{
	// Nifty 50
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS",
	"HINDUNILVR.NS", "ITC.NS", "SBIN.NS", "BHARTIARTL.NS", "KOTAKBANK.NS",
	"LT.NS", "AXISBANK.NS", "ASIANPAINT.NS", "MARUTI.NS", "TITAN.NS",
	"SUNPHARMA.NS", "BAJFINANCE.NS", "ULTRACEMCO.NS", "NESTLEIND.NS", "WIPRO.NS",
	"HCLTECH.NS", "TECHM.NS", "POWERGRID.NS", "NTPC.NS", "ONGC.NS",
	"TATAMOTORS.NS", "TATASTEEL.NS", "JSWSTEEL.NS", "M&M.NS", "ADANIPORTS.NS",
	"BAJAJFINSV.NS", "DRREDDY.NS", "CIPLA.NS", "DIVISLAB.NS", "GRASIM.NS",
	"HEROMOTOCO.NS", "EICHERMOT.NS", "BRITANNIA.NS", "COALINDIA.NS", "INDUSINDBK.NS",
	// Midcap
	"PIIND.NS", "NAUKRI.NS", "MRF.NS", "NHPC.NS", "KEI.NS",
	"NATCOPHARM.NS", "RADICO.NS", "REDINGTON.NS", "RELAXO.NS", "MASTEK.NS",
}

// CuratedUS returns a copy of the curated US list
func CuratedUS() []string {
	return append([]string(nil), curatedUS...)
}

// CuratedIndia returns a copy of the curated India list
func CuratedIndia() []string {
	return append([]string(nil), curatedIndia...)
}
