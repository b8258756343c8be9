package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/gemscreener/internal/brain"
	"github.com/wonny/gemscreener/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a titled double-line header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], truncate(val, widths[i]))
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

var (
	stockColumns = []string{"#", "Ticker", "Company", "Sector", "Comp", "Val", "Qual", "Tech", "Action", "Trend"}
	stockWidths  = []int{3, 12, 24, 20, 6, 6, 6, 6, 12, 12}

	gemColumns = []string{"#", "Ticker", "Company", "Sector", "Gem", "P/E", "ROE%", "MktCap"}
	gemWidths  = []int{3, 12, 24, 20, 6, 7, 7, 10}
)

// printRunResult prints one market pass: funnel, picks, gems
func printRunResult(r *brain.RunResult) {
	PrintHeader(fmt.Sprintf("%s Screening Result", r.Market))
	PrintKeyValue("Run ID", r.RunID, 14)
	PrintKeyValue("Duration", r.Duration.Round(time.Millisecond).String(), 14)
	PrintKeyValue("Universe", fmt.Sprintf("%d tickers", r.UniverseSize), 14)
	PrintKeyValue("Fetched", fmt.Sprintf("%d ok / %d failed", r.FetchStats.Fetched, r.FetchStats.Failed), 14)
	PrintKeyValue("Pre-filter", fmt.Sprintf("%d passed (%.1f%%)", r.Filter.Summary.Passed, r.Filter.Summary.PassRate), 14)
	PrintKeyValue("Analyzed", fmt.Sprintf("%d (%d failed)", r.Analyzed, r.Failed), 14)
	PrintSeparator()

	if reasons := r.Filter.Histogram.Sorted(); len(reasons) > 0 {
		fmt.Println("Rejections:")
		for _, rc := range reasons {
			PrintKeyValue(rc.Reason, fmt.Sprintf("%d", rc.Count), 28)
		}
		PrintSeparator()
	}

	if r.Diagnostic != "" {
		PrintWarning(r.Diagnostic)
	}

	if len(r.TopPicks) > 0 {
		fmt.Printf("Top %d picks:\n", len(r.TopPicks))
		printStocks(r.TopPicks)
		fmt.Println()

		var counts []string
		for _, a := range contracts.Actions {
			if n := r.ActionCounts[a]; n > 0 {
				counts = append(counts, fmt.Sprintf("%s=%d", a, n))
			}
		}
		PrintInfo("Actions: " + strings.Join(counts, ", "))
	}

	if len(r.HiddenGems) > 0 {
		fmt.Println()
		fmt.Printf("💎 Hidden gems (%d):\n", len(r.HiddenGems))
		printGems(r.HiddenGems)
	}
	PrintDoubleSeparator()
}

func printStocks(stocks []contracts.ScoredStock) {
	PrintTableHeader(stockColumns, stockWidths)
	for i, s := range stocks {
		PrintTableRow([]string{
			fmt.Sprintf("%d", i+1),
			s.Ticker,
			s.CompanyName,
			s.Sector,
			fmt.Sprintf("%.1f", s.CompositeScore),
			fmt.Sprintf("%.1f", s.ValuationScore),
			fmt.Sprintf("%.1f", s.FundamentalScore),
			fmt.Sprintf("%.1f", s.TechnicalScore),
			string(s.Action),
			string(s.Trend),
		}, stockWidths)
	}
}

func printGems(gems []contracts.HiddenGem) {
	PrintTableHeader(gemColumns, gemWidths)
	for i, g := range gems {
		PrintTableRow([]string{
			fmt.Sprintf("%d", i+1),
			g.Ticker,
			g.Name,
			g.Sector,
			fmt.Sprintf("%.1f", g.GemScore),
			optFloat(g.PERatio, 1),
			optFloat(g.ROE, 1),
			formatMarketCap(g.MarketCap),
		}, gemWidths)
	}
}

// formatMarketCap renders 1.2T / 350.0B / 75.3M
func formatMarketCap(v *float64) string {
	if v == nil {
		return "N/A"
	}
	switch x := *v; {
	case x >= 1e12:
		return fmt.Sprintf("%.1fT", x/1e12)
	case x >= 1e9:
		return fmt.Sprintf("%.1fB", x/1e9)
	case x >= 1e6:
		return fmt.Sprintf("%.1fM", x/1e6)
	default:
		return fmt.Sprintf("%.0f", x)
	}
}

func optFloat(v *float64, prec int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

// truncate shortens s to width runes, marking the cut with …
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width || width < 2 {
		return s
	}
	return string(r[:width-1]) + "…"
}
