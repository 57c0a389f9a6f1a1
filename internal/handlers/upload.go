package handlers

import (
	"io"
	"net/http"
	"path/filepath"

	"custom-print-backend/internal/drafts"
	"custom-print-backend/internal/metrics"
	"custom-print-backend/internal/models"
	"custom-print-backend/internal/services"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DesignStorage stores uploaded design files. It is satisfied by
// *supabase.StorageClient.
type DesignStorage interface {
	UploadDesign(userID uuid.UUID, draftID, filename, contentType string, data []byte) (string, string, error)
	DeleteFile(storagePath string) error
}

var allowedDesignTypes = []string{
	"image/png",
	"image/jpeg",
	"image/webp",
	"image/gif",
	"image/svg+xml",
	"application/pdf",
}

type UploadHandler struct {
	storage  DesignStorage
	drafts   *services.DraftService
	metrics  *metrics.Metrics
	maxBytes int64
}

func NewUploadHandler(storage DesignStorage, draftService *services.DraftService, m *metrics.Metrics, maxUploadMB int64) *UploadHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &UploadHandler{
		storage:  storage,
		drafts:   draftService,
		metrics:  m,
		maxBytes: maxUploadMB << 20,
	}
}

// Upload godoc
// @Summary     Upload a design file
// @Description Stores a design file in Supabase Storage and adds its public URL to the draft's collected designs.
// @Tags        drafts
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       draft_id path string true "Draft ID"
// @Param       file formData file true "Design file (png, jpeg, webp, gif, svg or pdf)"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     413 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /drafts/{draft_id}/designs/upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "design uploads are not configured"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	draftID := c.Param("draft_id")
	if !drafts.ValidID(draftID) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid draft id"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing design file",
			Message: err.Error(),
		})
		return
	}
	if fileHeader.Size > h.maxBytes {
		h.metrics.Upload(metrics.UploadRejected)
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: "design file is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read design file",
			Message: err.Error(),
		})
		return
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedDesignTypes...) {
		h.metrics.Upload(metrics.UploadRejected)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "unsupported design file type",
			Message: mtype.String(),
		})
		return
	}

	filename := filepath.Base(fileHeader.Filename)
	storagePath, publicURL, err := h.storage.UploadDesign(userID, draftID, filename, mtype.String(), data)
	if err != nil {
		h.metrics.Upload(metrics.UploadFailed)
		respondError(c, err)
		return
	}

	_, artifact, added, err := h.drafts.AddUploaded(c.Request.Context(), userID, draftID, publicURL, filename)
	if err != nil {
		h.metrics.Upload(metrics.UploadFailed)
		if derr := h.storage.DeleteFile(storagePath); derr != nil {
			zap.L().Warn("failed to remove orphaned design upload",
				zap.String("storage_path", storagePath),
				zap.Error(derr),
			)
		}
		respondError(c, err)
		return
	}

	h.metrics.Upload(metrics.UploadStored)
	c.JSON(http.StatusOK, models.UploadResponse{
		DraftID:  draftID,
		Artifact: artifact,
		Added:    added,
	})
}
