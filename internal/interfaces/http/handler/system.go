package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tradebooks/backend/internal/interfaces/http/dto"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler exposes health and readiness endpoints
type SystemHandler struct {
	BaseHandler
	db      Pinger
	started time.Time
}

// NewSystemHandler creates a system handler
func NewSystemHandler(db Pinger, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(logger),
		db:          db,
		started:     time.Now(),
	}
}

// RegisterRoutes registers the system routes
func (h *SystemHandler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health", h.Health)
	engine.GET("/ready", h.Ready)
}

// HealthResponse reports service liveness
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// Health reports liveness without touching dependencies
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, HealthResponse{
		Status: "ok",
		Uptime: time.Since(h.started).Round(time.Second).String(),
	})
}

// Ready reports readiness, checking the database connection
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable,
				dto.NewErrorResponse(dto.ErrCodeUnavailable, "Database unreachable"))
			return
		}
	}
	h.Success(c, HealthResponse{Status: "ready", Uptime: time.Since(h.started).Round(time.Second).String()})
}
