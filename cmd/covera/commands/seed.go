package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/covera-io/covera/internal/seed"
	"github.com/covera-io/covera/internal/store"
	"github.com/covera-io/covera/pkg/config"
	"github.com/covera-io/covera/pkg/database"
	"github.com/covera-io/covera/pkg/logger"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "데모 데이터 적재",
	Long: `데모 픽스처를 데이터베이스에 적재합니다.

이 명령어는:
- 스키마 마이그레이션 실행
- YAML 픽스처 로드 (기본: 내장 픽스처)
- 클라이언트/제품/계약/부속/라인/KPI 행 생성

이미 클라이언트가 존재하면 아무것도 쓰지 않습니다.

Example:
  go run ./cmd/covera seed
  go run ./cmd/covera seed --file fixtures/demo.yaml`,
	RunE: runSeed,
}

var seedFile string

func init() {
	rootCmd.AddCommand(seedCmd)

	// Flags
	seedCmd.Flags().StringVar(&seedFile, "file", "", "픽스처 YAML 파일 경로 (기본: 내장 픽스처)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Covera Seed ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	// Load the fixture before touching the database
	var fixture *seed.Fixture
	if seedFile != "" {
		fixture, err = seed.Load(seedFile)
	} else {
		fixture, err = seed.Default()
	}
	if err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := store.Migrate(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	seeder := seed.NewSeeder(
		store.NewCatalogRepository(db.Pool),
		store.NewContractRepository(db.Pool),
		store.NewKPIRepository(db.Pool),
		log,
	)
	if err := seeder.Apply(ctx, fixture); err != nil {
		return fmt.Errorf("apply fixture: %w", err)
	}

	fmt.Println("✅ Seed completed")
	return nil
}
