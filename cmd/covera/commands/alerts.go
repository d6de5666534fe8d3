package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/covera-io/covera/internal/kpi"
	"github.com/covera-io/covera/internal/store"
	"github.com/covera-io/covera/pkg/config"
	"github.com/covera-io/covera/pkg/database"
)

// alertsCmd represents the alerts command
var alertsCmd = &cobra.Command{
	Use:   "alerts [contract_id]",
	Short: "계약 KPI 알림 조회",
	Long: `계약의 KPI 시리즈를 스캔하고 비정상 지점만 출력합니다.

이 명령어는:
- 모든 KPI 유형의 시리즈 빌드
- GREEN 초과 또는 스파이크 지점 필터링
- 유형/날짜 순으로 출력

Example:
  go run ./cmd/covera alerts 1`,
	Args: cobra.ExactArgs(1),
	RunE: runAlerts,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
}

func runAlerts(cmd *cobra.Command, args []string) error {
	contractID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid contract id %q", args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	monitor := kpi.NewMonitor(store.NewKPIRepository(db.Pool))

	alerts, err := monitor.ContractAlerts(context.Background(), contractID)
	if err != nil {
		return fmt.Errorf("scan alerts: %w", err)
	}

	if len(alerts) == 0 {
		fmt.Printf("✅ Contract %d: no KPI alerts\n", contractID)
		return nil
	}

	fmt.Printf("Contract %d: %d KPI alert(s)\n\n", contractID, len(alerts))
	for _, alert := range alerts {
		spike := ""
		if alert.Spike {
			spike = " SPIKE"
		}
		fmt.Printf("  %-16s %s  %-6s %+7.2f%%%s\n",
			alert.KPIType,
			alert.Date.Format("2006-01-02"),
			alert.AlertLevel,
			alert.DeltaPercent,
			spike,
		)
	}

	return nil
}
