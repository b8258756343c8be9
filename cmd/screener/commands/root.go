package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Gem Screener - US / India 주식 스크리닝",
	Long: `Gem Screener Unified CLI

US (S&P 500) 와 India (NSE) 종목을 펀더멘털 + 기술적 지표로 평가합니다.
S0 Universe → S1 Pre-Filter → S2 Analysis → S3 Scoring → S4 Selection

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener screen --market US --top-n 20
  go run ./cmd/screener daily
  go run ./cmd/screener scheduler start
  go run ./cmd/screener api --port 8089`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: STRATEGY_CONFIG or embedded defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
