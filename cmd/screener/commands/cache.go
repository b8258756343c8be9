package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/gemscreener/internal/contracts"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Universe 캐시 관리",
	Long: `종목 리스트 캐시(redis 또는 CACHE_DIR 파일)를 조회하거나 삭제합니다.

Example:
  go run ./cmd/screener cache info
  go run ./cmd/screener cache clear --market INDIA`,
}

var (
	cacheInfoCmd = &cobra.Command{
		Use:   "info",
		Short: "캐시 상태 조회",
		RunE:  runCacheInfo,
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "캐시 삭제",
		RunE:  runCacheClear,
	}

	cacheMarket string
)

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheCmd.PersistentFlags().StringVar(&cacheMarket, "market", contracts.MarketBoth, "market: US, INDIA or BOTH")
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	markets, err := contracts.ExpandMarkets(cacheMarket)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	widths := []int{7, 7, 7, 7, 20, 12, 40}
	PrintTableHeader([]string{"Market", "Exists", "Valid", "Count", "Updated", "Age", "Location"}, widths)
	for _, m := range markets {
		info, err := a.cache.Info(cmd.Context(), m)
		if err != nil {
			return fmt.Errorf("cache info %s: %w", m, err)
		}

		updated, age := "-", "-"
		if info.Exists {
			updated = info.Timestamp.Format("2006-01-02 15:04:05")
			age = info.Age.Round(time.Second).String()
		}
		PrintTableRow([]string{
			m.String(),
			fmt.Sprintf("%v", info.Exists),
			fmt.Sprintf("%v", info.Valid),
			fmt.Sprintf("%d", info.Count),
			updated,
			age,
			info.Location,
		}, widths)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	markets, err := contracts.ExpandMarkets(cacheMarket)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	for _, m := range markets {
		if err := a.cache.Clear(cmd.Context(), m); err != nil {
			return fmt.Errorf("clear %s: %w", m, err)
		}
		PrintSuccess(fmt.Sprintf("%s cache cleared", m))
	}
	return nil
}
