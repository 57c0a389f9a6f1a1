package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"custom-print-backend/internal/drafts"
	"custom-print-backend/internal/metrics"
	"custom-print-backend/internal/models"
	"custom-print-backend/internal/requests"
	"custom-print-backend/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SubmissionResult is the outcome of a submission. Duplicate is set when the
// payment reference was already submitted and no new record was created.
type SubmissionResult struct {
	Request   *models.CustomizationRequest
	Duplicate bool
}

type lastSubmission struct {
	reference string
	request   models.CustomizationRequest
}

// SubmissionService persists assembled requests. Repeated submissions that
// carry the payment reference of an earlier one return that record instead
// of creating another.
type SubmissionService struct {
	assembler *requests.Assembler
	store     store.RequestStore
	drafts    drafts.Store
	metrics   *metrics.Metrics
	logger    *zap.Logger

	group singleflight.Group
	mu    sync.Mutex
	last  map[uuid.UUID]lastSubmission
}

func NewSubmissionService(
	assembler *requests.Assembler,
	requestStore store.RequestStore,
	draftStore drafts.Store,
	m *metrics.Metrics,
	logger *zap.Logger,
) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		assembler: assembler,
		store:     requestStore,
		drafts:    draftStore,
		metrics:   m,
		logger:    logger,
		last:      make(map[uuid.UUID]lastSubmission),
	}
}

// Submit validates and assembles the form and creates the record.
func (s *SubmissionService) Submit(ctx context.Context, userID uuid.UUID, form models.RequestForm, artifacts []models.DesignArtifact, paymentRef string) (*SubmissionResult, error) {
	paymentRef = strings.TrimSpace(paymentRef)
	if paymentRef == "" {
		return s.create(ctx, userID, form, artifacts, "")
	}

	if prev, ok := s.lastFor(userID, paymentRef); ok {
		return s.duplicate(prev, paymentRef), nil
	}

	leader := false
	v, err, _ := s.group.Do(userID.String()+":"+paymentRef, func() (interface{}, error) {
		leader = true
		if prev, ok := s.lastFor(userID, paymentRef); ok {
			return s.duplicate(prev, paymentRef), nil
		}
		return s.create(ctx, userID, form, artifacts, paymentRef)
	})
	if err != nil {
		return nil, err
	}

	res := v.(*SubmissionResult)
	if !leader && !res.Duplicate {
		// Collapsed into a concurrent call that created the record.
		s.metrics.Submission(metrics.SubmissionDuplicate)
		return &SubmissionResult{Request: res.Request, Duplicate: true}, nil
	}
	return res, nil
}

// SubmitDraft submits a saved draft and deletes it once the record exists.
// A draft that is already gone is not an error when its payment reference
// was submitted before, as happens when a gateway callback is retried.
func (s *SubmissionService) SubmitDraft(ctx context.Context, userID uuid.UUID, draftID, paymentRef string) (*SubmissionResult, error) {
	paymentRef = strings.TrimSpace(paymentRef)

	draft, err := s.drafts.Load(ctx, userID, draftID)
	if err != nil {
		if errors.Is(err, drafts.ErrNotFound) && paymentRef != "" {
			if prev, ferr := s.store.FindByPaymentReference(ctx, userID, paymentRef); ferr == nil {
				return s.duplicate(*prev, paymentRef), nil
			}
		}
		return nil, err
	}

	res, err := s.Submit(ctx, userID, draft.Form, draft.Artifacts, paymentRef)
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, userID, draftID); err != nil {
		s.logger.Warn("failed to delete submitted draft",
			zap.String("draft_id", draftID),
			zap.Error(err),
		)
	}
	return res, nil
}

func (s *SubmissionService) create(ctx context.Context, userID uuid.UUID, form models.RequestForm, artifacts []models.DesignArtifact, paymentRef string) (*SubmissionResult, error) {
	record, err := s.assembler.Assemble(userID, form, artifacts, paymentRef)
	if err != nil {
		s.metrics.Submission(metrics.SubmissionInvalid)
		return nil, err
	}

	created, err := s.store.Create(ctx, record)
	if errors.Is(err, store.ErrDuplicateReference) && paymentRef != "" {
		prev, ferr := s.store.FindByPaymentReference(ctx, userID, paymentRef)
		if errors.Is(ferr, store.ErrNotFound) {
			// The reference is held by a record of another user.
			s.metrics.Submission(metrics.SubmissionFailed)
			return nil, fmt.Errorf("failed to submit customization request: %w", err)
		}
		if ferr != nil {
			s.metrics.Submission(metrics.SubmissionFailed)
			return nil, fmt.Errorf("failed to load submitted customization request: %w", ferr)
		}
		s.remember(userID, paymentRef, *prev)
		return s.duplicate(*prev, paymentRef), nil
	}
	if err != nil {
		s.metrics.Submission(metrics.SubmissionFailed)
		s.logger.Error("failed to create customization request",
			zap.String("user_id", userID.String()),
			zap.String("payment_reference", paymentRef),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to submit customization request: %w", err)
	}

	if paymentRef != "" {
		s.remember(userID, paymentRef, *created)
	}
	s.metrics.Submission(metrics.SubmissionCreated)
	s.logger.Info("customization request submitted",
		zap.String("request_id", created.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("payment_reference", paymentRef),
		zap.Int64("total_cost", created.TotalCost),
		zap.Int("designs", len(artifacts)),
	)
	return &SubmissionResult{Request: created}, nil
}

func (s *SubmissionService) duplicate(prev models.CustomizationRequest, paymentRef string) *SubmissionResult {
	s.metrics.Submission(metrics.SubmissionDuplicate)
	s.logger.Info("duplicate submission ignored",
		zap.String("request_id", prev.ID.String()),
		zap.String("payment_reference", paymentRef),
	)
	return &SubmissionResult{Request: &prev, Duplicate: true}
}

func (s *SubmissionService) lastFor(userID uuid.UUID, paymentRef string) (models.CustomizationRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.last[userID]
	if !ok || prev.reference != paymentRef {
		return models.CustomizationRequest{}, false
	}
	return prev.request, true
}

func (s *SubmissionService) remember(userID uuid.UUID, paymentRef string, r models.CustomizationRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[userID] = lastSubmission{reference: paymentRef, request: r}
}
