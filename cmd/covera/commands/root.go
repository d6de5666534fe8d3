package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "covera",
	Short: "Covera - 서비스 계약 보증 판정 시스템",
	Long: `Covera Unified CLI

서비스 계약 기반 보증 커버리지 판정과 KPI 모니터링 시스템.
계약/부속/라인 계층에서 클레임 커버리지를 판정하고
일별 KPI 편차를 추적합니다.

Usage:
  go run ./cmd/covera [command]

Examples:
  go run ./cmd/covera api
  go run ./cmd/covera seed
  go run ./cmd/covera decide --contract 1 --product 1 --event-date 2024-06-01
  go run ./cmd/covera test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
