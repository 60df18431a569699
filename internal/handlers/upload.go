package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"entradas-backend/internal/imageproc"
	"entradas-backend/internal/models"
	"entradas-backend/internal/services"
)

type UploadHandler struct {
	coordinator *services.Coordinator
}

func NewUploadHandler(coordinator *services.Coordinator) *UploadHandler {
	return &UploadHandler{coordinator: coordinator}
}

// Upload godoc
// @Summary     Upload an attendee photo
// @Description Ingests one captured photo tagged with an entry tier. The
// @Description current tier price is snapshotted onto the record; later
// @Description price changes do not alter existing records.
// @Tags        photos
// @Accept      multipart/form-data
// @Produce     json
// @Param       photo formData file true "Captured image"
// @Param       tier formData string true "Entry tier (general or vip)"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	form := c.Request.MultipartForm
	if form == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no photo uploaded"})
		return
	}

	var file *multipart.FileHeader
	for _, fieldName := range []string{"photo", "image", "file"} {
		if f := form.File[fieldName]; len(f) > 0 {
			file = f[0]
			break
		}
	}
	if file == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no photo uploaded"})
		return
	}

	tier := c.PostForm("tier")
	if tier == "" {
		tier = c.PostForm("tipo")
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to open uploaded file",
			Message: err.Error(),
		})
		return
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read uploaded file",
			Message: err.Error(),
		})
		return
	}

	photo, err := h.coordinator.Ingest(c.Request.Context(), data, tier)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTier):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid entry tier"})
		case errors.Is(err, imageproc.ErrTooLarge):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "file too large, maximum is 10MB"})
		case errors.Is(err, imageproc.ErrNotImage):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "only image files are allowed"})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to store photo",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		Success:   true,
		ID:        photo.ID,
		Filename:  photo.Filename,
		Tipo:      string(photo.Tier),
		Precio:    photo.Price,
		MirrorURL: photo.MirrorURL.String,
		Message:   fmt.Sprintf("Foto %s guardada - $%.2f", photo.Tier, photo.Price),
	})
}
