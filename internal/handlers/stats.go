package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"entradas-backend/internal/models"
	"entradas-backend/internal/services"
)

type StatsHandler struct {
	coordinator *services.Coordinator
}

func NewStatsHandler(coordinator *services.Coordinator) *StatsHandler {
	return &StatsHandler{coordinator: coordinator}
}

// Get godoc
// @Summary     Revenue statistics
// @Description Count and revenue per tier, overall, and for the server's
// @Description current calendar date.
// @Tags        stats
// @Produce     json
// @Success     200 {object} models.Stats
// @Failure     500 {object} models.ErrorResponse
// @Router      /estadisticas [get]
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.coordinator.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get statistics",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
