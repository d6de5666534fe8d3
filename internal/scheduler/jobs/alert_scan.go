package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/covera-io/covera/internal/kpi"
	"github.com/covera-io/covera/internal/realtime"
	"github.com/covera-io/covera/internal/store"
	"github.com/covera-io/covera/pkg/logger"
	"github.com/covera-io/covera/pkg/redis"
)

// AlertScanJob walks every active contract, rebuilds its KPI alerts and
// pushes non-nominal points to stream subscribers
// ⭐ SSOT: 정기 알림 스캔은 이 작업에서만
type AlertScanJob struct {
	kpiRepo  *store.KPIRepository
	monitor  *kpi.Monitor
	hub      *realtime.Hub
	cache    *redis.Cache
	schedule string
	logger   *logger.Logger
}

// NewAlertScanJob creates a new alert scan job
func NewAlertScanJob(
	kpiRepo *store.KPIRepository,
	monitor *kpi.Monitor,
	hub *realtime.Hub,
	cache *redis.Cache,
	schedule string,
	log *logger.Logger,
) *AlertScanJob {
	return &AlertScanJob{
		kpiRepo:  kpiRepo,
		monitor:  monitor,
		hub:      hub,
		cache:    cache,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *AlertScanJob) Name() string {
	return "kpi_alert_scan"
}

// Schedule returns the cron schedule expression
func (j *AlertScanJob) Schedule() string {
	return j.schedule
}

// Run scans all active contracts for KPI alerts
func (j *AlertScanJob) Run(ctx context.Context) error {
	scannedAt := time.Now().UTC()

	contractIDs, err := j.kpiRepo.ActiveContractIDs(ctx)
	if err != nil {
		return fmt.Errorf("list active contracts: %w", err)
	}

	totalAlerts := 0
	for _, contractID := range contractIDs {
		alerts, err := j.monitor.ContractAlerts(ctx, contractID)
		if err != nil {
			return fmt.Errorf("scan contract %d: %w", contractID, err)
		}

		// Fresh rows may have landed since the last cache fill
		cacheKey := fmt.Sprintf("kpi:series:%d", contractID)
		if err := j.cache.Delete(ctx, cacheKey); err != nil {
			j.logger.WithError(err).Warn("Failed to invalidate cached KPI series")
		}

		if len(alerts) == 0 {
			continue
		}
		totalAlerts += len(alerts)

		j.logger.WithFields(map[string]interface{}{
			"contract_id": contractID,
			"alerts":      len(alerts),
		}).Warn("Contract has KPI alerts")

		for _, alert := range alerts {
			event := realtime.AlertEvent{
				ContractID: contractID,
				Alert:      alert,
				ScannedAt:  scannedAt,
			}
			j.hub.Broadcast(event)

			if err := j.cache.Publish(ctx, "alerts", event); err != nil {
				j.logger.WithError(err).Warn("Failed to publish alert event")
			}
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"contracts": len(contractIDs),
		"alerts":    totalAlerts,
	}).Info("KPI alert scan completed")

	return nil
}
