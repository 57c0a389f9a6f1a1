package handlers

import (
	"errors"
	"net/http"

	"custom-print-backend/internal/drafts"
	"custom-print-backend/internal/middleware"
	"custom-print-backend/internal/models"
	"custom-print-backend/internal/requests"
	"custom-print-backend/internal/status"
	"custom-print-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondError maps domain errors onto HTTP responses. Anything unknown is a
// 500 whose details stay in the log.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var verrs requests.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:  "validation_failed",
			Fields: verrs.Fields(),
		})
	case errors.Is(err, store.ErrCollectionMissing):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:         "setup_required",
			Message:       "the customization_requests table does not exist yet",
			SetupRequired: true,
		})
	case store.IsTransient(err):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "unavailable",
			Message: "temporarily unavailable, please retry",
		})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "customization request not found"})
	case errors.Is(err, drafts.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "draft not found"})
	case errors.Is(err, drafts.ErrInvalidID):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid draft id"})
	case errors.Is(err, store.ErrDuplicateReference):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "duplicate payment reference",
			Message: "this payment reference was already used for another request",
		})
	case errors.Is(err, status.ErrInvalidTransition), errors.Is(err, store.ErrStatusMismatch):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "invalid status transition",
			Message: err.Error(),
		})
	default:
		zap.L().Error("request failed",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
	}
}

// currentUserID reads the authenticated user id, answering the request itself
// when it is missing or malformed.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}
	return userID, true
}

func requestIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request id"})
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return false
	}
	return true
}
