package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/gemscreener/internal/brain"
	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/report"
	"github.com/wonny/gemscreener/internal/selection"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "스크리닝 실행 (S0 → S4)",
	Long: `한 시장 또는 두 시장 전체 파이프라인을 실행합니다.

S0 Universe → S1 Pre-Filter → S2 Analysis → S3 Scoring → S4 Selection
추천 종목이 부족하면 Hidden Gems 탐색을 추가로 수행합니다.

Example:
  go run ./cmd/screener screen --market US
  go run ./cmd/screener screen --market INDIA --top-n 10 --csv
  go run ./cmd/screener screen --market BOTH --no-cache --rank-by valuation_score`,
	RunE: runScreen,
}

var (
	screenMarket     string
	screenTopN       int
	screenNoCache    bool
	screenClearCache bool
	screenAnalyzeAll bool
	screenRankBy     string
	screenCSV        bool
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenMarket, "market", "US", "market: US, INDIA or BOTH")
	screenCmd.Flags().IntVar(&screenTopN, "top-n", 0, "number of picks (default: pipeline.top_n)")
	screenCmd.Flags().BoolVar(&screenNoCache, "no-cache", false, "refetch the ticker universe")
	screenCmd.Flags().BoolVar(&screenClearCache, "clear-cache", false, "clear the ticker cache before running")
	screenCmd.Flags().BoolVar(&screenAnalyzeAll, "analyze-all", false, "deep-score every pre-filter survivor")
	screenCmd.Flags().StringVar(&screenRankBy, "rank-by", string(selection.RankByComposite), "ranking field")
	screenCmd.Flags().BoolVar(&screenCSV, "csv", false, "write picks and hidden gems to OUTPUT_DIR")
}

func runScreen(cmd *cobra.Command, args []string) error {
	// 입력 검증은 fetch 전에
	markets, err := contracts.ExpandMarkets(screenMarket)
	if err != nil {
		return err
	}
	rankBy, err := selection.ParseRankField(screenRankBy)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("=== Gem Screener ===")
	PrintKeyValue("Strategy", fmt.Sprintf("%s %s (%s)", a.snapshot.StrategyID, a.snapshot.Version, a.snapshot.ConfigHash[:12]), 10)

	if screenClearCache {
		for _, m := range markets {
			if err := a.cache.Clear(ctx, m); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
		}
		PrintSuccess("Ticker cache cleared")
	}

	var failed int
	for _, m := range markets {
		result, err := a.orch.RunMarket(ctx, brain.RunConfig{
			Market:     m,
			TopN:       screenTopN,
			AnalyzeAll: screenAnalyzeAll,
			UseCache:   !screenNoCache,
			RankBy:     rankBy,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			PrintError(fmt.Sprintf("%s: %v", m, err))
			failed++
			continue
		}

		printRunResult(result)

		if screenCSV {
			if err := saveRunCSV(a.cfg.Screening.OutputDir, result); err != nil {
				return err
			}
		}
	}

	if failed == len(markets) {
		return fmt.Errorf("screening failed for all markets")
	}
	return nil
}

// saveRunCSV writes picks and, when present, hidden gems
func saveRunCSV(dir string, r *brain.RunResult) error {
	if len(r.TopPicks) > 0 {
		path, err := report.SaveStocks(dir, report.PicksFileName(r.Market, r.StartedAt), r.TopPicks)
		if err != nil {
			return err
		}
		PrintSuccess("Saved " + path)
	}
	if len(r.HiddenGems) > 0 {
		path, err := report.SaveGems(dir, report.HiddenGemsFileName(r.Market, r.StartedAt), r.HiddenGems)
		if err != nil {
			return err
		}
		PrintSuccess("Saved " + path)
	}
	return nil
}

// signalContext is cancelled on Ctrl+C / SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
