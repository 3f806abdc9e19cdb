package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Version is reported by the health endpoint. Overridden at build time with
// -ldflags "-X github.com/pageza/foodgram/backend/internal/api.Version=...".
var Version = "dev"

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewHealthHandler(db *gorm.DB, log *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log.With("component", "health")}
}

// RegisterRoutes mounts the check at /health and /api/health.
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/api/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := types.HealthResponse{Status: "healthy", Database: "up", Version: Version}
	status := http.StatusOK
	if err := database.HealthCheck(ctx, h.db); err != nil {
		h.log.Error("database health check failed", "error", err)
		resp.Status = "unhealthy"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
