package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/covera-io/covera/internal/api/handlers"
	"github.com/covera-io/covera/internal/realtime"
	"github.com/covera-io/covera/pkg/config"
	"github.com/covera-io/covera/pkg/database"
	"github.com/covera-io/covera/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(
	cfg *config.Config,
	db *database.DB,
	contractHandler *handlers.ContractHandler,
	decisionHandler *handlers.DecisionHandler,
	kpiHandler *handlers.KPIHandler,
	hub *realtime.Hub,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(db)).Methods("GET")

	// Contract hierarchy
	r.HandleFunc("/contracts", contractHandler.CreateContract).Methods("POST")
	r.HandleFunc("/appendices", contractHandler.CreateAppendix).Methods("POST")
	r.HandleFunc("/contract-lines", contractHandler.CreateLine).Methods("POST")

	// Coverage decisions
	r.HandleFunc("/decisions/coverage", decisionHandler.Decide).Methods("POST")

	// KPI ingest and reporting
	r.HandleFunc("/kpi/expected", kpiHandler.CreateExpected).Methods("POST")
	r.HandleFunc("/kpi/actual", kpiHandler.CreateActual).Methods("POST")
	r.HandleFunc("/kpi/contracts/{id:[0-9]+}/series", kpiHandler.GetSeries).Methods("GET")
	r.HandleFunc("/kpi/contracts/{id:[0-9]+}/alerts", kpiHandler.GetAlerts).Methods("GET")

	// Alert stream
	r.HandleFunc("/alerts/stream", hub.ServeWS).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	if cfg.RateLimit.Enabled {
		r.Use(rateLimitMiddleware(cfg.RateLimit, log))
	}

	return r
}

// healthCheckHandler returns server and database health
func healthCheckHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbHealth, _ := db.HealthCheck(r.Context())

		status := "ok"
		code := http.StatusOK
		if dbHealth == nil || !dbHealth.Healthy {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   status,
			"service":  "covera-api",
			"date":     time.Now().UTC().Format("2006-01-02"),
			"database": dbHealth,
		})
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
