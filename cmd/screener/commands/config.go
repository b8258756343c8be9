package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/gemscreener/internal/strategyconfig"
	"github.com/wonny/gemscreener/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "전략 설정 조회 / 검증",
	Long: `전략 YAML(필터, 섹터 벤치마크, 액션 임계값, 파이프라인)을 출력하거나 검증합니다.

Example:
  go run ./cmd/screener config show
  go run ./cmd/screener config show --default > strategy.yaml
  go run ./cmd/screener config validate --strategy strategy.yaml`,
}

var (
	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "현재 전략 설정 출력 (YAML)",
		RunE:  runConfigShow,
	}

	configValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "전략 설정 검증",
		RunE:  runConfigValidate,
	}

	configShowDefault bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)

	configShowCmd.Flags().BoolVar(&configShowDefault, "default", false, "print the embedded default YAML verbatim")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if configShowDefault {
		_, err := os.Stdout.Write(strategyconfig.DefaultYAML())
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	strategy, snapshot, err := loadStrategy(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("# source: %s\n# config_hash: %s\n", snapshot.Source, snapshot.ConfigHash)
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(strategy)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	strategy, snapshot, err := loadStrategy(cfg)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintSuccess(fmt.Sprintf("%s is valid", snapshot.Source))
	PrintKeyValue("Strategy", snapshot.StrategyID, 12)
	PrintKeyValue("Version", snapshot.Version, 12)
	PrintKeyValue("Config hash", snapshot.ConfigHash, 12)
	PrintKeyValue("Sectors", fmt.Sprintf("%d", len(strategy.SectorBenchmarks)), 12)

	for _, w := range strategyconfig.Warn(strategy) {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	return nil
}
