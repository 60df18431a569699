package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"entradas-backend/internal/models"
	"entradas-backend/internal/services"
)

// Pinger is the slice of the database client the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	coordinator *services.Coordinator
	db          Pinger
	startedAt   time.Time
}

func NewHealthHandler(coordinator *services.Coordinator, db Pinger) *HealthHandler {
	return &HealthHandler{
		coordinator: coordinator,
		db:          db,
		startedAt:   time.Now(),
	}
}

// Get godoc
// @Summary     Health check
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Get(c *gin.Context) {
	dbStatus := "ok"
	if h.db == nil {
		dbStatus = "unavailable"
	} else if err := h.db.Ping(c.Request.Context()); err != nil {
		dbStatus = "unavailable"
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:           "OK",
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds:    time.Since(h.startedAt).Seconds(),
		StorageBackend:   h.coordinator.PrimaryName(),
		MirrorConfigured: h.coordinator.MirrorConfigured(),
		Database:         dbStatus,
	})
}
