package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"entradas-backend/internal/models"
	"entradas-backend/internal/services"
)

const defaultPageSize = 12

type PhotosHandler struct {
	coordinator *services.Coordinator
}

func NewPhotosHandler(coordinator *services.Coordinator) *PhotosHandler {
	return &PhotosHandler{coordinator: coordinator}
}

func photoResponse(p models.Photo) models.PhotoResponse {
	return models.PhotoResponse{
		ID:        p.ID,
		Tipo:      string(p.Tier),
		Filename:  p.Filename,
		URL:       "/api/image/" + p.Filename,
		MirrorURL: p.MirrorURL.String,
		Precio:    p.Price,
		Timestamp: p.CapturedAt,
	}
}

// List godoc
// @Summary     List photos, paginated
// @Description Returns one gallery page ordered newest first. Page numbers
// @Description are 1-based; a page past the end returns an empty list.
// @Tags        photos
// @Produce     json
// @Param       page query int false "Page number" default(1)
// @Param       limit query int false "Photos per page" default(12)
// @Success     200 {object} models.PhotoListResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /photos [get]
func (h *PhotosHandler) List(c *gin.Context) {
	page := atoiDefault(c.Query("page"), 1)
	limit := atoiDefault(c.Query("limit"), defaultPageSize)

	photos, info, err := h.coordinator.ListPaginated(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list photos",
			Message: err.Error(),
		})
		return
	}

	resp := models.PhotoListResponse{
		Photos: make([]models.PhotoResponse, 0, len(photos)),
		Pagination: models.Pagination{
			CurrentPage:   info.CurrentPage,
			TotalPages:    info.TotalPages,
			TotalPhotos:   info.Total,
			PhotosPerPage: info.PerPage,
			HasNext:       info.HasNext,
			HasPrev:       info.HasPrev,
		},
	}
	for _, p := range photos {
		resp.Photos = append(resp.Photos, photoResponse(p))
	}

	c.JSON(http.StatusOK, resp)
}

// ListByTier godoc
// @Summary     List photos for one entry tier
// @Tags        photos
// @Produce     json
// @Param       tier path string true "Entry tier (general or vip)"
// @Success     200 {array} models.PhotoResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /photos/{tier} [get]
func (h *PhotosHandler) ListByTier(c *gin.Context) {
	photos, err := h.coordinator.ListByTier(c.Request.Context(), c.Param("tier"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidTier) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid entry tier"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list photos",
			Message: err.Error(),
		})
		return
	}

	resp := make([]models.PhotoResponse, 0, len(photos))
	for _, p := range photos {
		resp = append(resp, photoResponse(p))
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteOne godoc
// @Summary     Delete one photo
// @Description Removes the metadata row, then best-effort removes the
// @Description stored bytes from each backend holding a copy.
// @Tags        photos
// @Produce     json
// @Param       id path int true "Photo ID"
// @Success     200 {object} models.DeleteResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /photos/{id} [delete]
func (h *PhotosHandler) DeleteOne(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid photo id"})
		return
	}

	if err := h.coordinator.DeleteOne(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "photo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete photo",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.DeleteResponse{Success: true, Message: "photo deleted"})
}

// DeleteAll godoc
// @Summary     Delete all photo records
// @Description Destructive and irreversible. Requires the shared secret.
// @Description Only metadata rows are purged; stored bytes remain on the
// @Description backends.
// @Tags        photos
// @Accept      json
// @Produce     json
// @Param       request body models.DeleteAllRequest true "Shared secret"
// @Success     200 {object} models.DeleteAllResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /delete-all [delete]
func (h *PhotosHandler) DeleteAll(c *gin.Context) {
	var req models.DeleteAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	count, err := h.coordinator.DeleteAll(c.Request.Context(), req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "wrong password"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete photos",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.DeleteAllResponse{Success: true, DeletedCount: count})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
