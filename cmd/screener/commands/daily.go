package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/gemscreener/internal/brain"
	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/report"
)

// dailyCmd represents the daily command
var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "일일 스크리닝 (DAILY_MARKETS)",
	Long: `일일 한도(daily_top_n, daily_analyze_limit)로 여러 시장을 순서대로 실행하고
시장별 daily_gems CSV를 저장합니다. 한 시장이 실패해도 다른 시장은 계속 진행합니다.

Example:
  go run ./cmd/screener daily
  go run ./cmd/screener daily --market INDIA`,
	RunE: runDaily,
}

var dailyMarket string

func init() {
	rootCmd.AddCommand(dailyCmd)

	dailyCmd.Flags().StringVar(&dailyMarket, "market", "", "market: US, INDIA or BOTH (default: DAILY_MARKETS)")
}

func runDaily(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	marketArg := dailyMarket
	if marketArg == "" {
		marketArg = a.cfg.Screening.DailyMarkets
	}
	markets, err := contracts.ExpandMarkets(marketArg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("=== Gem Screener Daily Run ===")

	daily, err := a.orch.RunDaily(ctx, brain.DailyConfig{Markets: markets, UseCache: true})
	if err != nil {
		return err
	}

	for _, m := range markets {
		if msg, ok := daily.Errors[m]; ok {
			PrintError(fmt.Sprintf("%s: %s", m, msg))
			continue
		}
		r := daily.Results[m]
		printRunResult(r)
		if len(r.TopPicks) == 0 {
			continue
		}
		path, err := report.SaveStocks(a.cfg.Screening.OutputDir, report.DailyFileName(m, daily.StartedAt), r.TopPicks)
		if err != nil {
			return err
		}
		PrintSuccess("Saved " + path)
	}

	if len(daily.Results) == 0 {
		failed := make([]string, 0, len(daily.Errors))
		for m := range daily.Errors {
			failed = append(failed, m.String())
		}
		sort.Strings(failed)
		return fmt.Errorf("daily run failed for %v", failed)
	}
	return nil
}
