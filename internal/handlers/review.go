package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"custom-print-backend/internal/middleware"
	"custom-print-backend/internal/models"
	"custom-print-backend/internal/requests"
	"custom-print-backend/internal/review"
	"custom-print-backend/internal/status"
	"custom-print-backend/internal/store"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const streamHeartbeat = 15 * time.Second

type ReviewHandler struct {
	console  *review.Console
	watcher  review.Watcher
	validate *validatorv10.Validate
}

func NewReviewHandler(console *review.Console, watcher review.Watcher) *ReviewHandler {
	return &ReviewHandler{
		console:  console,
		watcher:  watcher,
		validate: requests.NewValidator(),
	}
}

// ListRequests godoc
// @Summary     List customization requests for review
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       status query string false "Pending, approved, rejected or completed"
// @Param       sort query string false "asc or desc by creation time" default(desc)
// @Param       limit query int false "Maximum records" default(100)
// @Success     200 {object} models.RequestListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /admin/requests [get]
func (h *ReviewHandler) ListRequests(c *gin.Context) {
	f, ok := parseFilter(c)
	if !ok {
		return
	}

	list, err := h.console.List(c.Request.Context(), f)
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
// @Summary     Inspect a customization request
// @Description Returns the record with its design files, cost breakdown and contact details.
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Success     200 {object} models.RequestDetailResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /admin/requests/{request_id} [get]
func (h *ReviewHandler) GetRequest(c *gin.Context) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}

	d, err := h.console.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d.Response())
}

// GetFiles godoc
// @Summary     List the design files of a request
// @Description Files that could not be recovered are returned as placeholder entries with a description.
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Success     200 {object} models.DesignFilesResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /admin/requests/{request_id}/files [get]
func (h *ReviewHandler) GetFiles(c *gin.Context) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}

	d, err := h.console.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DesignFilesResponse{
		RequestID: id.String(),
		Files:     d.DesignFiles,
	})
}

// Approve godoc
// @Summary     Approve a Pending request
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Param       request body models.TransitionRequest false "Reviewer note"
// @Success     200 {object} models.CustomizationRequest
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /admin/requests/{request_id}/approve [post]
func (h *ReviewHandler) Approve(c *gin.Context) {
	h.transition(c, h.console.Approve)
}

// Reject godoc
// @Summary     Reject a Pending request
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Param       request body models.TransitionRequest false "Reviewer note"
// @Success     200 {object} models.CustomizationRequest
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /admin/requests/{request_id}/reject [post]
func (h *ReviewHandler) Reject(c *gin.Context) {
	h.transition(c, h.console.Reject)
}

// Complete godoc
// @Summary     Complete an approved request
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Param       request body models.TransitionRequest false "Reviewer note"
// @Success     200 {object} models.CustomizationRequest
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /admin/requests/{request_id}/complete [post]
func (h *ReviewHandler) Complete(c *gin.Context) {
	h.transition(c, h.console.Complete)
}

type transitionFunc func(ctx context.Context, id uuid.UUID, reviewer, note string) (*models.CustomizationRequest, error)

func (h *ReviewHandler) transition(c *gin.Context, apply transitionFunc) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}

	var req models.TransitionRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	if err := requests.ValidateStruct(h.validate, req); err != nil {
		respondError(c, err)
		return
	}

	reviewer := c.GetString(middleware.EmailKey)
	if reviewer == "" {
		reviewer = c.GetString(middleware.UserIDKey)
	}

	updated, err := apply(c.Request.Context(), id, reviewer, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Stream godoc
// @Summary     Stream the review list
// @Description Server-sent events. A "requests" event carries the filtered list on connect and on every refresh; an "error" event reports a failed refresh.
// @Tags        admin
// @Produce     text/event-stream
// @Security    Bearer
// @Param       status query string false "Pending, approved, rejected or completed"
// @Param       sort query string false "asc or desc by creation time" default(desc)
// @Param       limit query int false "Maximum records" default(100)
// @Success     200 {object} models.RequestListResponse
// @Router      /admin/requests/stream [get]
func (h *ReviewHandler) Stream(c *gin.Context) {
	f, ok := parseFilter(c)
	if !ok {
		return
	}

	snapshots := make(chan review.Snapshot, 1)
	sub := h.watcher.Subscribe(c.Request.Context(), f, func(s review.Snapshot) {
		// Keep only the newest snapshot when the client is slow.
		select {
		case <-snapshots:
		default:
		}
		snapshots <- s
	})
	defer sub.Stop()

	headers := c.Writer.Header()
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-sub.Done():
			return false
		case <-heartbeat.C:
			_, err := io.WriteString(w, ": heartbeat\n\n")
			return err == nil
		case s := <-snapshots:
			if s.Err != nil {
				c.SSEvent("error", models.ErrorResponse{
					Error:   "refresh failed",
					Message: "temporarily unavailable, please retry",
				})
				return true
			}
			list := s.Requests
			if list == nil {
				list = []models.CustomizationRequest{}
			}
			c.SSEvent("requests", models.RequestListResponse{Requests: list})
			return true
		}
	})
}

func parseFilter(c *gin.Context) (store.Filter, bool) {
	var f store.Filter

	if raw := c.Query("status"); raw != "" {
		s, err := status.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid status", Message: err.Error()})
			return f, false
		}
		f.Status = s
	}

	switch sort := c.DefaultQuery("sort", string(store.SortDesc)); sort {
	case string(store.SortAsc), string(store.SortDesc):
		f.Sort = store.SortOrder(sort)
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid sort", Message: "sort must be asc or desc"})
		return f, false
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid limit", Message: "limit must be a positive integer"})
			return f, false
		}
		f.Limit = limit
	}
	return f.Normalize(), true
}
