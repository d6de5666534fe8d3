package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/covera-io/covera/internal/kpi"
	"github.com/covera-io/covera/internal/realtime"
	"github.com/covera-io/covera/internal/scheduler"
	"github.com/covera-io/covera/internal/scheduler/jobs"
	"github.com/covera-io/covera/internal/store"
	"github.com/covera-io/covera/pkg/config"
	"github.com/covera-io/covera/pkg/database"
	"github.com/covera-io/covera/pkg/logger"
	"github.com/covera-io/covera/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

이 명령어는:
- 스케줄러 데몬 시작
- 등록된 작업 조회
- 특정 작업 즉시 실행

등록되는 작업:
- kpi_alert_scan: 매일 (KPI_ALERT_SCAN_CRON, 기본 오전 7시)

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/covera scheduler start
  go run ./cmd/covera scheduler run kpi_alert_scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobNow,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Covera Scheduler ===")

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.JobNames() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.JobNames() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJobNow(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Printf("Running job: %s\n", jobName)
	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// Give the background run a moment before tearing down connections
	fmt.Println("Job started, waiting for completion...")
	waitForHistory(sched, jobName)
	return nil
}

// waitForHistory polls until the job records a result
func waitForHistory(sched *scheduler.Scheduler, jobName string) {
	for {
		time.Sleep(500 * time.Millisecond)

		history, err := sched.JobHistory(jobName)
		if err != nil {
			return
		}
		if len(history.Results) > 0 {
			last := history.Results[len(history.Results)-1]
			if last.Success {
				fmt.Printf("✅ Job %s completed in %v\n", jobName, last.Duration)
			} else {
				fmt.Printf("❌ Job %s failed: %s\n", jobName, last.Error)
			}
			return
		}
	}
}

func initScheduler() (*scheduler.Scheduler, func(), error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database and migrate schema
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := store.Migrate(context.Background(), db.Pool); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate schema: %w", err)
	}

	// 4. Connect to Redis (optional)
	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "covera")

	// 5. Build the alert scan pipeline
	kpiRepo := store.NewKPIRepository(db.Pool)
	monitor := kpi.NewMonitor(kpiRepo)
	hub := realtime.NewHub(log)

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewAlertScanJob(
		kpiRepo, monitor, hub, cache, cfg.KPI.AlertScanCron, log,
	)); err != nil {
		db.Close()
		redisClient.Close()
		return nil, nil, fmt.Errorf("register alert scan job: %w", err)
	}

	cleanup := func() {
		hub.Close()
		redisClient.Close()
		db.Close()
	}
	return sched, cleanup, nil
}
