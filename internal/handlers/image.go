package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"entradas-backend/internal/models"
	"entradas-backend/internal/services"
)

type ImageHandler struct {
	coordinator *services.Coordinator
}

func NewImageHandler(coordinator *services.Coordinator) *ImageHandler {
	return &ImageHandler{coordinator: coordinator}
}

// Get godoc
// @Summary     Fetch a stored photo by filename
// @Description Serves the bytes from the primary backend, or redirects to
// @Description the mirrored copy when the primary is unavailable.
// @Tags        photos
// @Produce     jpeg
// @Param       filename path string true "Photo filename"
// @Success     200 {file} binary
// @Success     302 {string} string "redirect to mirror"
// @Failure     404 {object} models.ErrorResponse
// @Router      /image/{filename} [get]
func (h *ImageHandler) Get(c *gin.Context) {
	img, err := h.coordinator.Retrieve(c.Request.Context(), c.Param("filename"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "photo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to retrieve photo",
			Message: err.Error(),
		})
		return
	}

	if img.RedirectURL != "" {
		c.Redirect(http.StatusFound, img.RedirectURL)
		return
	}

	c.Data(http.StatusOK, img.ContentType, img.Data)
}
