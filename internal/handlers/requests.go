package handlers

import (
	"net/http"

	"custom-print-backend/internal/models"
	"custom-print-backend/internal/store"

	"github.com/gin-gonic/gin"
)

type RequestsHandler struct {
	store store.RequestStore
}

func NewRequestsHandler(requestStore store.RequestStore) *RequestsHandler {
	return &RequestsHandler{
		store: requestStore,
	}
}

// ListRequests godoc
// @Summary     List my customization requests
// @Description Returns the caller's customization requests, newest first.
// @Tags        requests
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.RequestListResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /requests [get]
func (h *RequestsHandler) ListRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	list, err := h.store.List(c.Request.Context(), store.Filter{UserID: userID})
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.CustomizationRequest{}
	}
	c.JSON(http.StatusOK, models.RequestListResponse{Requests: list})
}

// GetRequest godoc
// @Summary     Get one of my customization requests
// @Tags        requests
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Success     200 {object} models.CustomizationRequest
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /requests/{request_id} [get]
func (h *RequestsHandler) GetRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := requestIDParam(c)
	if !ok {
		return
	}

	r, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	// Other customers' records are reported as missing.
	if r.UserID != userID {
		respondError(c, store.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, r)
}
