package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/utils"
)

// HealthChecker is anything that can report whether it is usable
type HealthChecker interface {
	Healthy() error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db     *sqlx.DB
	broker HealthChecker
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *sqlx.DB, broker HealthChecker, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		broker: broker,
		logger: log,
	}
}

// Healthz handles liveness probe
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is alive"
// @Router /healthz [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Readyz handles readiness probe
// @Summary Readiness probe
// @Description Ready when the database answers and the queue broker is connected
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is ready"
// @Failure 503 {object} utils.ErrorResponse "Service unavailable"
// @Router /readyz [get]
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.ErrorWithErr(err, "Database ping failed")
		utils.WriteError(w, errors.ServiceUnavailable("Database connection failed"))
		return
	}

	if h.broker != nil {
		if err := h.broker.Healthy(); err != nil {
			h.logger.ErrorWithErr(err, "Queue broker unavailable")
			utils.WriteError(w, errors.ServiceUnavailable("Queue broker unavailable"))
			return
		}
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "connected",
		"queue":    "connected",
	})
}
