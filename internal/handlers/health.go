package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"custom-print-backend/internal/models"
	"custom-print-backend/internal/store"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store   Pinger
	backend string
}

func NewHealthHandler(s Pinger, backend string) *HealthHandler {
	return &HealthHandler{
		store:   s,
		backend: backend,
	}
}

// Health godoc
// @Summary     Health check
// @Description Returns the health of the API and its document store. setup_required is set when the customization_requests table is missing.
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Failure     503 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	response := models.HealthResponse{
		Status: "ok",
		Store:  h.backend,
	}

	if err := h.store.Ping(ctx); err != nil {
		response.Status = "degraded"
		response.SetupRequired = errors.Is(err, store.ErrCollectionMissing)
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}
