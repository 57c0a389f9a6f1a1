package handlers

import (
	"net/http"

	"custom-print-backend/internal/config"
	"custom-print-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups everything NewRouter mounts. Metrics may be nil.
type Handlers struct {
	Health   *HealthHandler
	Catalog  *CatalogHandler
	Drafts   *DraftsHandler
	Upload   *UploadHandler
	Requests *RequestsHandler
	Review   *ReviewHandler
	Webhook  *WebhookHandler
	Metrics  http.Handler
}

func NewRouter(cfg *config.Config, logger *zap.Logger, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recovery(logger))

	// Health check and metrics (no auth)
	router.GET("/health", h.Health.Health)
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}

	// Payment gateway callback (token auth)
	router.POST("/api/v1/webhooks/payment", h.Webhook.HandlePayment)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.GET("/catalog/techniques", h.Catalog.GetTechniques)

	// Drafts and submission
	api.GET("/drafts/:draft_id", h.Drafts.GetDraft)
	api.PUT("/drafts/:draft_id", h.Drafts.SaveDraft)
	api.POST("/drafts/:draft_id/designs", h.Drafts.AddDesigns)
	api.POST("/drafts/:draft_id/designs/upload", h.Upload.Upload)
	api.POST("/drafts/:draft_id/submit", h.Drafts.Submit)

	// Customer's own requests
	api.GET("/requests", h.Requests.ListRequests)
	api.GET("/requests/:request_id", h.Requests.GetRequest)

	// Review console
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/requests", h.Review.ListRequests)
	admin.GET("/requests/stream", h.Review.Stream)
	admin.GET("/requests/:request_id", h.Review.GetRequest)
	admin.GET("/requests/:request_id/files", h.Review.GetFiles)
	admin.POST("/requests/:request_id/approve", h.Review.Approve)
	admin.POST("/requests/:request_id/reject", h.Review.Reject)
	admin.POST("/requests/:request_id/complete", h.Review.Complete)

	return router
}
