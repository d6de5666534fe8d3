package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/covera-io/covera/internal/domain"
	"github.com/covera-io/covera/internal/kpi"
	"github.com/covera-io/covera/internal/store"
	"github.com/covera-io/covera/pkg/logger"
	"github.com/covera-io/covera/pkg/redis"
)

// KPIHandler handles KPI ingest and reporting endpoints
// ⭐ SSOT: KPI API 핸들러는 이 구조체에서만
type KPIHandler struct {
	kpiRepo   *store.KPIRepository
	contracts *store.ContractRepository
	monitor   *kpi.Monitor
	cache     *redis.Cache
	cacheTTL  time.Duration
	logger    *logger.Logger
}

// NewKPIHandler creates a new KPI handler
func NewKPIHandler(
	kpiRepo *store.KPIRepository,
	contracts *store.ContractRepository,
	monitor *kpi.Monitor,
	cache *redis.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *KPIHandler {
	return &KPIHandler{
		kpiRepo:   kpiRepo,
		contracts: contracts,
		monitor:   monitor,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    log,
	}
}

// KPIRowRequest represents one expected or actual KPI row
type KPIRowRequest struct {
	ContractID int64  `json:"contract_id"`
	KPIType    string `json:"kpi_type"`
	Date       string `json:"date"`
	Value      int    `json:"value"`
}

// CreateExpected upserts a planned daily count
// POST /kpi/expected
func (h *KPIHandler) CreateExpected(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contractID, kpiType, date, value, ok := h.parseRow(w, r)
	if !ok {
		return
	}

	row := &domain.KPIExpected{
		ContractID: contractID,
		KPIType:    kpiType,
		Date:       date,
		Value:      value,
	}
	if err := h.kpiRepo.UpsertExpected(ctx, row); err != nil {
		h.logger.WithError(err).Error("Failed to upsert expected KPI row")
		respondError(w, http.StatusInternalServerError, "Failed to store expected KPI row")
		return
	}

	h.invalidateSeries(ctx, contractID)
	respondJSON(w, http.StatusCreated, row)
}

// CreateActual upserts an observed daily count
// POST /kpi/actual
func (h *KPIHandler) CreateActual(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contractID, kpiType, date, value, ok := h.parseRow(w, r)
	if !ok {
		return
	}

	row := &domain.KPIActual{
		ContractID: contractID,
		KPIType:    kpiType,
		Date:       date,
		Value:      value,
	}
	if err := h.kpiRepo.UpsertActual(ctx, row); err != nil {
		h.logger.WithError(err).Error("Failed to upsert actual KPI row")
		respondError(w, http.StatusInternalServerError, "Failed to store actual KPI row")
		return
	}

	h.invalidateSeries(ctx, contractID)
	respondJSON(w, http.StatusCreated, row)
}

// SeriesResponse represents the full per-type series of a contract
type SeriesResponse struct {
	ContractID int64                `json:"contract_id"`
	Series     []domain.TypedSeries `json:"series"`
}

// GetSeries returns the merged expected/actual series for every KPI type
// GET /kpi/contracts/{id}/series
func (h *KPIHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contractID, ok := h.contractFromPath(w, r)
	if !ok {
		return
	}

	cacheKey := seriesCacheKey(contractID)
	var cached SeriesResponse
	if hit, err := h.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	series, err := h.monitor.ContractSeries(ctx, contractID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build KPI series")
		respondError(w, http.StatusInternalServerError, "Failed to build KPI series")
		return
	}

	response := SeriesResponse{ContractID: contractID, Series: series}
	if err := h.cache.Set(ctx, cacheKey, response, h.cacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache KPI series")
	}

	respondJSON(w, http.StatusOK, response)
}

// AlertsResponse represents the alert scan result of a contract
type AlertsResponse struct {
	ContractID int64               `json:"contract_id"`
	Alerts     []domain.AlertPoint `json:"alerts"`
}

// GetAlerts returns only non-nominal or spiking KPI points
// GET /kpi/contracts/{id}/alerts
func (h *KPIHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contractID, ok := h.contractFromPath(w, r)
	if !ok {
		return
	}

	alerts, err := h.monitor.ContractAlerts(ctx, contractID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to scan KPI alerts")
		respondError(w, http.StatusInternalServerError, "Failed to scan KPI alerts")
		return
	}

	respondJSON(w, http.StatusOK, AlertsResponse{ContractID: contractID, Alerts: alerts})
}

// parseRow decodes and validates a KPI row request. The KPI type is
// checked against the enum before anything reaches the store.
func (h *KPIHandler) parseRow(w http.ResponseWriter, r *http.Request) (int64, domain.KPIType, time.Time, int, bool) {
	var req KPIRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return 0, "", time.Time{}, 0, false
	}

	kpiType := domain.KPIType(req.KPIType)
	if !kpiType.IsValid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Unknown kpi_type %q", req.KPIType))
		return 0, "", time.Time{}, 0, false
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
		return 0, "", time.Time{}, 0, false
	}

	if req.Value < 0 {
		respondError(w, http.StatusBadRequest, "'value' must not be negative")
		return 0, "", time.Time{}, 0, false
	}

	if _, err := h.contracts.GetContract(r.Context(), req.ContractID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Contract not found")
			return 0, "", time.Time{}, 0, false
		}
		h.logger.WithError(err).Error("Failed to load contract")
		respondError(w, http.StatusInternalServerError, "Failed to load contract")
		return 0, "", time.Time{}, 0, false
	}

	return req.ContractID, kpiType, date, req.Value, true
}

func (h *KPIHandler) contractFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	contractID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contract id")
		return 0, false
	}

	if _, err := h.contracts.GetContract(r.Context(), contractID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Contract not found")
			return 0, false
		}
		h.logger.WithError(err).Error("Failed to load contract")
		respondError(w, http.StatusInternalServerError, "Failed to load contract")
		return 0, false
	}

	return contractID, true
}

func (h *KPIHandler) invalidateSeries(ctx context.Context, contractID int64) {
	if err := h.cache.Delete(ctx, seriesCacheKey(contractID)); err != nil {
		h.logger.WithError(err).Warn("Failed to invalidate cached KPI series")
	}
}

func seriesCacheKey(contractID int64) string {
	return fmt.Sprintf("kpi:series:%d", contractID)
}
