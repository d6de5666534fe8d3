package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/covera-io/covera/pkg/config"
	"github.com/covera-io/covera/pkg/logger"
)

// readHeaderTimeout bounds slow-header clients before the router runs
const readHeaderTimeout = 5 * time.Second

// Server hosts the covera HTTP API: contract ingest, coverage decisions,
// KPI reporting and the alert websocket stream
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	config     *config.Config
}

// New creates the API server. Timeouts come from ServerConfig; the alert
// stream endpoint is exempt from the write timeout because the websocket
// upgrade hijacks its connection.
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		},
		logger: log,
		config: cfg,
	}
}

// Start serves until Shutdown is called or the listener fails
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"addr": s.httpServer.Addr,
		"env":  s.config.Env,
	}).Info("Starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown drains in-flight requests until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
