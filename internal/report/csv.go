package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wonny/gemscreener/internal/contracts"
)

// NA marks an absent value
const NA = "N/A"

// Header is the column order of the picks CSV
var Header = []string{
	"Rank", "Ticker", "Company", "Sector", "Industry", "Action",
	"Composite_Score", "Valuation_Score", "Technical_Score",
	"Current_Price", "Market_Cap", "PE_Ratio", "ROE_%", "Debt_to_Equity",
	"Earnings_Growth_%", "Trend", "RSI", "Description",
}

// GemHeader is the column order of the hidden gems CSV
var GemHeader = []string{"Rank", "Ticker", "Company", "Sector", "Gem_Score", "PE_Ratio", "ROE_%", "Market_Cap"}

// WriteStocks writes ranked stocks as CSV, rank starting at 1
// ⭐ SSOT: CSV 컬럼 정의는 여기서만
func WriteStocks(w io.Writer, stocks []contracts.ScoredStock) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	for i, s := range stocks {
		trend := string(s.Trend)
		if trend == "" {
			trend = NA
		}
		row := []string{
			strconv.Itoa(i + 1),
			s.Ticker,
			s.CompanyName,
			s.Sector,
			s.Industry,
			string(s.Action),
			score(s.CompositeScore),
			score(s.ValuationScore),
			score(s.TechnicalScore),
			opt(s.CurrentPrice, 2),
			opt(s.MarketCap, 0),
			opt(s.PERatio, 2),
			opt(s.ROE, 2),
			opt(s.DebtToEquity, 2),
			opt(s.EarningsGrowth, 2),
			trend,
			opt(s.RSI, 1),
			s.Description,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteGems writes hidden gems as CSV
func WriteGems(w io.Writer, gems []contracts.HiddenGem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(GemHeader); err != nil {
		return err
	}

	for i, g := range gems {
		row := []string{
			strconv.Itoa(i + 1),
			g.Ticker,
			g.Name,
			g.Sector,
			score(g.GemScore),
			opt(g.PERatio, 2),
			opt(g.ROE, 2),
			opt(g.MarketCap, 0),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// PicksFileName returns stock_picks_<market>_<timestamp>.csv
func PicksFileName(market contracts.Market, at time.Time) string {
	return fmt.Sprintf("stock_picks_%s_%s.csv", market.Key(), at.Format("20060102_150405"))
}

// DailyFileName returns daily_gems_<market>_<timestamp>.csv
func DailyFileName(market contracts.Market, at time.Time) string {
	return fmt.Sprintf("daily_gems_%s_%s.csv", market.Key(), at.Format("20060102_150405"))
}

// HiddenGemsFileName returns hidden_gems_<market>_<timestamp>.csv
func HiddenGemsFileName(market contracts.Market, at time.Time) string {
	return fmt.Sprintf("hidden_gems_%s_%s.csv", market.Key(), at.Format("20060102_150405"))
}

// SaveStocks writes stocks to dir/name and returns the full path
func SaveStocks(dir, name string, stocks []contracts.ScoredStock) (string, error) {
	return save(dir, name, func(w io.Writer) error { return WriteStocks(w, stocks) })
}

// SaveGems writes gems to dir/name and returns the full path
func SaveGems(dir, name string, gems []contracts.HiddenGem) (string, error) {
	return save(dir, name, func(w io.Writer) error { return WriteGems(w, gems) })
}

func save(dir, name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func opt(p *float64, prec int) string {
	if p == nil {
		return NA
	}
	return strconv.FormatFloat(*p, 'f', prec, 64)
}
