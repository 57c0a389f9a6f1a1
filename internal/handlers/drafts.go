package handlers

import (
	"net/http"

	"custom-print-backend/internal/design"
	"custom-print-backend/internal/models"
	"custom-print-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type DraftsHandler struct {
	drafts      *services.DraftService
	submissions *services.SubmissionService
}

func NewDraftsHandler(draftService *services.DraftService, submissionService *services.SubmissionService) *DraftsHandler {
	return &DraftsHandler{
		drafts:      draftService,
		submissions: submissionService,
	}
}

// GetDraft godoc
// @Summary     Load a draft
// @Description Returns the saved form, collected designs and running quote of a draft. An unknown draft id starts an empty draft.
// @Tags        drafts
// @Produce     json
// @Security    Bearer
// @Param       draft_id path string true "Draft ID"
// @Success     200 {object} models.DraftResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /drafts/{draft_id} [get]
func (h *DraftsHandler) GetDraft(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	d, err := h.drafts.Get(c.Request.Context(), userID, c.Param("draft_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d.Response())
}

// SaveDraft godoc
// @Summary     Save draft form state
// @Description Stores the customer-entered form and returns the recomputed quote. Validation runs at submit time, so partial forms are accepted.
// @Tags        drafts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       draft_id path string true "Draft ID"
// @Param       request body models.RequestForm true "Form state"
// @Success     200 {object} models.DraftResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /drafts/{draft_id} [put]
func (h *DraftsHandler) SaveDraft(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var form models.RequestForm
	if !bindJSON(c, &form) {
		return
	}

	d, err := h.drafts.SaveForm(c.Request.Context(), userID, c.Param("draft_id"), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d.Response())
}

// AddDesigns godoc
// @Summary     Add designs to a draft
// @Description Accepts a single design (url, image_url, preview_url or data_url) or a bulk save (canvas_designs, uploaded_files, external_links). Already collected URLs are skipped.
// @Tags        drafts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       draft_id path string true "Draft ID"
// @Param       request body design.SavePayload true "Design save payload"
// @Success     200 {object} models.AddDesignResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /drafts/{draft_id}/designs [post]
func (h *DraftsHandler) AddDesigns(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload design.SavePayload
	if !bindJSON(c, &payload) {
		return
	}

	d, added, err := h.drafts.AddDesigns(c.Request.Context(), userID, c.Param("draft_id"), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AddDesignResponse{
		Added:     added,
		Artifacts: d.Response().Artifacts,
	})
}

// Submit godoc
// @Summary     Submit a draft
// @Description Validates the draft and creates a Pending customization request. Resubmitting the same payment reference returns the earlier request with duplicate=true.
// @Tags        drafts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       draft_id path string true "Draft ID"
// @Param       request body models.SubmitRequest false "Payment reference"
// @Success     200 {object} models.SubmitResponse "Duplicate submission"
// @Success     201 {object} models.SubmitResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /drafts/{draft_id}/submit [post]
func (h *DraftsHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.SubmitRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	res, err := h.submissions.SubmitDraft(c.Request.Context(), userID, c.Param("draft_id"), req.PaymentReference)
	if err != nil {
		respondError(c, err)
		return
	}

	code := http.StatusCreated
	if res.Duplicate {
		code = http.StatusOK
	}
	c.JSON(code, models.SubmitResponse{
		Request:   *res.Request,
		Duplicate: res.Duplicate,
	})
}
