// Package review implements the admin side of the pipeline: listing,
// inspecting and transitioning customization requests.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"custom-print-backend/internal/budget"
	"custom-print-backend/internal/design"
	"custom-print-backend/internal/metrics"
	"custom-print-backend/internal/models"
	"custom-print-backend/internal/pricing"
	"custom-print-backend/internal/status"
	"custom-print-backend/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Detail is everything the console shows for one request.
type Detail struct {
	Request     *models.CustomizationRequest
	DesignFiles []models.DesignArtifact
	Cost        pricing.Breakdown
	// CostConsistent is false when the stored total disagrees with the
	// breakdown recomputed from the record.
	CostConsistent bool
}

func (d *Detail) Response() models.RequestDetailResponse {
	return models.RequestDetailResponse{
		Request:     *d.Request,
		DesignFiles: d.DesignFiles,
		Cost: models.CostResponse{
			QuoteResponse: d.Cost.Response(),
			Consistent:    d.CostConsistent,
		},
		Contact: models.ContactResponse{
			PhoneNumber:     d.Request.PhoneNumber,
			WhatsAppNumber:  d.Request.WhatsAppNumber,
			DeliveryAddress: d.Request.DeliveryAddress,
		},
	}
}

type Console struct {
	store   store.RequestStore
	parser  *design.Parser
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewConsole(requestStore store.RequestStore, parser *design.Parser, m *metrics.Metrics, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		store:   requestStore,
		parser:  parser,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *Console) List(ctx context.Context, f store.Filter) ([]models.CustomizationRequest, error) {
	return c.store.List(ctx, f)
}

func (c *Console) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	r, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Request:        r,
		DesignFiles:    c.ListDesignFiles(r),
		Cost:           pricing.FromRecord(r),
		CostConsistent: pricing.Check(r) == nil,
	}, nil
}

// ListDesignFiles rebuilds the downloadable design files of r.
func (c *Console) ListDesignFiles(r *models.CustomizationRequest) []models.DesignArtifact {
	files := c.parser.ParseFromRecord(r)
	if files == nil {
		files = []models.DesignArtifact{}
	}
	return files
}

func (c *Console) Approve(ctx context.Context, id uuid.UUID, reviewer, note string) (*models.CustomizationRequest, error) {
	return c.transition(ctx, id, status.ActionApprove, reviewer, note)
}

func (c *Console) Reject(ctx context.Context, id uuid.UUID, reviewer, note string) (*models.CustomizationRequest, error) {
	return c.transition(ctx, id, status.ActionReject, reviewer, note)
}

func (c *Console) Complete(ctx context.Context, id uuid.UUID, reviewer, note string) (*models.CustomizationRequest, error) {
	return c.transition(ctx, id, status.ActionComplete, reviewer, note)
}

func (c *Console) transition(ctx context.Context, id uuid.UUID, action status.Action, reviewer, note string) (*models.CustomizationRequest, error) {
	r, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := status.Transition(r.Status, action)
	if err != nil {
		return nil, err
	}

	adminNotes := budget.Annotate(r.AdminNotes, reviewEntry(c.now(), next, reviewer, note))
	updated, err := c.store.UpdateStatus(ctx, id, r.Status, next, adminNotes)
	if errors.Is(err, store.ErrStatusMismatch) {
		// Another reviewer moved the request since it was read.
		return nil, fmt.Errorf("%w: request %s is no longer %s", status.ErrInvalidTransition, id, r.Status)
	}
	if err != nil {
		return nil, err
	}

	c.metrics.Transition(string(r.Status), string(next))
	c.logger.Info("customization request status changed",
		zap.String("request_id", id.String()),
		zap.String("from", string(r.Status)),
		zap.String("to", string(next)),
		zap.String("reviewer", reviewer),
	)
	return updated, nil
}

// reviewEntry is the admin_notes line recorded for a transition.
func reviewEntry(at time.Time, next status.Status, reviewer, note string) string {
	entry := fmt.Sprintf("[%s %s", at.UTC().Format(time.RFC3339), next)
	if reviewer != "" {
		entry += " by " + reviewer
	}
	entry += "]"
	if note = strings.TrimSpace(note); note != "" {
		entry += " " + note
	}
	return entry
}
