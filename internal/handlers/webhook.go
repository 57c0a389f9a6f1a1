package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"custom-print-backend/internal/config"
	"custom-print-backend/internal/models"
	"custom-print-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventChargeSuccess = "charge.success"
	EventChargeClosed  = "charge.closed"
)

type WebhookHandler struct {
	config      *config.Config
	submissions *services.SubmissionService
}

func NewWebhookHandler(cfg *config.Config, submissionService *services.SubmissionService) *WebhookHandler {
	return &WebhookHandler{
		config:      cfg,
		submissions: submissionService,
	}
}

// HandlePayment godoc
// @Summary     Payment gateway callback
// @Description Submits the referenced draft once its charge succeeds. Retried callbacks for the same reference return the existing request. Authenticated with the configured webhook token.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       Authorization header string true "Webhook token"
// @Param       request body models.PaymentWebhookEvent true "Payment event"
// @Success     200 {object} models.SubmitResponse
// @Success     202 {object} map[string]string "Event ignored"
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /webhooks/payment [post]
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	if h.config.PaymentWebhookToken == "" {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "payment webhook is not configured"})
		return
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "missing authorization token"})
		return
	}

	// Accept "Bearer <token>" or the bare token.
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.config.PaymentWebhookToken)) != 1 {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid authorization token"})
		return
	}

	var event models.PaymentWebhookEvent
	if !bindJSON(c, &event) {
		return
	}

	logger := zap.L().With(
		zap.String("event", event.Event),
		zap.String("payment_reference", event.Reference),
		zap.String("draft_id", event.DraftID),
	)

	if event.Event != EventChargeSuccess {
		logger.Info("payment event ignored")
		c.JSON(http.StatusAccepted, gin.H{"status": "ignored"})
		return
	}

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return
	}
	if strings.TrimSpace(event.Reference) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing payment reference"})
		return
	}

	res, err := h.submissions.SubmitDraft(c.Request.Context(), userID, event.DraftID, event.Reference)
	if err != nil {
		logger.Warn("payment callback submission failed", zap.Error(err))
		respondError(c, err)
		return
	}

	logger.Info("payment callback processed",
		zap.String("request_id", res.Request.ID.String()),
		zap.Bool("duplicate", res.Duplicate),
	)
	c.JSON(http.StatusOK, models.SubmitResponse{
		Request:   *res.Request,
		Duplicate: res.Duplicate,
	})
}
