package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/covera-io/covera/internal/api"
	"github.com/covera-io/covera/internal/api/handlers"
	"github.com/covera-io/covera/internal/coverage"
	"github.com/covera-io/covera/internal/kpi"
	"github.com/covera-io/covera/internal/realtime"
	"github.com/covera-io/covera/internal/store"
	"github.com/covera-io/covera/pkg/config"
	"github.com/covera-io/covera/pkg/database"
	"github.com/covera-io/covera/pkg/logger"
	"github.com/covera-io/covera/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- 스키마 마이그레이션 실행
- 계약/부속/라인 등록 엔드포인트 제공
- 커버리지 판정 엔드포인트 제공
- KPI 시리즈/알림 조회 및 알림 스트림 제공

Endpoints:
  GET  /health                         - Health check
  POST /contracts                      - 계약 등록
  POST /appendices                     - 부속 등록
  POST /contract-lines                 - 라인 등록
  POST /decisions/coverage             - 커버리지 판정
  POST /kpi/expected                   - KPI 예상값 적재
  POST /kpi/actual                     - KPI 실측값 적재
  GET  /kpi/contracts/{id}/series      - KPI 시리즈 조회
  GET  /kpi/contracts/{id}/alerts      - KPI 알림 조회
  GET  /alerts/stream                  - 알림 웹소켓 스트림

Example:
  go run ./cmd/covera api
  go run ./cmd/covera api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Covera API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database and migrate schema
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := store.Migrate(context.Background(), db.Pool); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	log.Info("Connected to database")

	// 4. Connect to Redis (optional, no-op when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, "covera")

	// 5. Create repositories
	catalogRepo := store.NewCatalogRepository(db.Pool)
	contractRepo := store.NewContractRepository(db.Pool)
	kpiRepo := store.NewKPIRepository(db.Pool)

	// 6. Create engines
	engine := coverage.NewEngine(contractRepo)
	monitor := kpi.NewMonitor(kpiRepo)

	// 7. Create alert stream hub. Scan events published by the scheduler
	// process arrive over Redis and are relayed to stream subscribers.
	hub := realtime.NewHub(log)
	defer hub.Close()

	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()
	if events := cache.Subscribe(relayCtx, "alerts"); events != nil {
		go hub.Relay(events)
	} else {
		log.Warn("Redis disabled, alert stream will not receive scheduler events")
	}

	// 8. Create handlers
	contractHandler := handlers.NewContractHandler(contractRepo, catalogRepo, log)
	decisionHandler := handlers.NewDecisionHandler(engine, log)
	kpiHandler := handlers.NewKPIHandler(kpiRepo, contractRepo, monitor, cache, cfg.KPI.SeriesCacheTTL, log)

	// 9. Create router and server
	router := api.NewRouter(cfg, db, contractHandler, decisionHandler, kpiHandler, hub, log)
	server := api.New(cfg, log, router)

	// 10. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
