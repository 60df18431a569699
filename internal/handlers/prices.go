package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"entradas-backend/internal/models"
	"entradas-backend/internal/services"
)

type PricesHandler struct {
	coordinator *services.Coordinator
}

func NewPricesHandler(coordinator *services.Coordinator) *PricesHandler {
	return &PricesHandler{coordinator: coordinator}
}

// List godoc
// @Summary     Current price per entry tier
// @Tags        prices
// @Produce     json
// @Success     200 {array} models.PriceResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /precios [get]
func (h *PricesHandler) List(c *gin.Context) {
	prices, err := h.coordinator.ListPrices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list prices",
			Message: err.Error(),
		})
		return
	}

	resp := make([]models.PriceResponse, 0, len(prices))
	for _, p := range prices {
		resp = append(resp, models.PriceResponse{
			Tipo:      string(p.Tier),
			Precio:    p.Amount,
			UpdatedAt: p.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary     Update the price for one entry tier
// @Description Applies to future uploads only; records already created
// @Description keep their snapshotted price.
// @Tags        prices
// @Accept      json
// @Produce     json
// @Param       tier path string true "Entry tier (general or vip)"
// @Param       request body models.UpdatePriceRequest true "New price"
// @Success     200 {object} models.UpdatePriceResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /precios/{tier} [put]
func (h *PricesHandler) Update(c *gin.Context) {
	tier := c.Param("tier")

	var req models.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}
	if req.Precio == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "precio is required"})
		return
	}

	if err := h.coordinator.SetPrice(c.Request.Context(), tier, *req.Precio); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTier):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid entry tier"})
		case errors.Is(err, services.ErrInvalidPrice):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "price must be zero or positive"})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to update price",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, models.UpdatePriceResponse{
		Success: true,
		Tipo:    tier,
		Precio:  *req.Precio,
		Message: fmt.Sprintf("Precio %s actualizado a $%.2f", tier, *req.Precio),
	})
}
