package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/database"
	"github.com/garmentiq/revenue-forecast-api/internal/datawarehouse"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const readinessTimeout = 5 * time.Second

// Pinger is satisfied by the cache
type Pinger interface {
	Ping(ctx context.Context) error
}

// WarehouseChecker is satisfied by the data warehouse client
type WarehouseChecker interface {
	HealthCheck(ctx context.Context) *datawarehouse.HealthStatus
}

// HealthHandler serves the liveness and readiness probes
type HealthHandler struct {
	db        *gorm.DB
	cache     Pinger
	warehouse WarehouseChecker
	logger    *zap.Logger
}

// NewHealthHandler creates the probe handler. cache and warehouse may be nil when disabled.
func NewHealthHandler(db *gorm.DB, cache Pinger, warehouse WarehouseChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		cache:     cache,
		warehouse: warehouse,
		logger:    logger,
	}
}

// Live godoc
// @Summary Liveness probe
// @Tags Health
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Database godoc
// @Summary Database health with pool statistics
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	stats, err := database.HealthCheckWithStats(h.db)
	if err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats": map[string]interface{}{
			"max_open_connections": stats.MaxOpenConnections,
			"open_connections":     stats.OpenConnections,
			"in_use":               stats.InUse,
			"idle":                 stats.Idle,
			"wait_count":           stats.WaitCount,
			"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			"max_idle_closed":      stats.MaxIdleClosed,
			"max_lifetime_closed":  stats.MaxLifetimeClosed,
		},
	})
}

// Ready godoc
// @Summary Readiness probe
// @Description Checks the database and, when enabled, the cache and the data warehouse
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]interface{})
	allHealthy := true

	if err := database.HealthCheck(h.db); err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
		allHealthy = false
	} else {
		checks["database"] = map[string]interface{}{"status": "healthy"}
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.Warn("Cache health check failed", zap.Error(err))
			checks["cache"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			allHealthy = false
		} else {
			checks["cache"] = map[string]interface{}{"status": "healthy"}
		}
	}

	// The warehouse is optional: an outage degrades economic data but does not fail readiness.
	if h.warehouse != nil {
		checks["dataWarehouse"] = h.warehouse.HealthCheck(ctx)
	}

	status, code := "healthy", http.StatusOK
	if !allHealthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
