package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"custom-print-backend/internal/design"
	"custom-print-backend/internal/drafts"
	"custom-print-backend/internal/metrics"
	"custom-print-backend/internal/models"
	"custom-print-backend/internal/requests"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DraftService maintains a customer's draft across form steps: form state,
// its running quote and the collected design artifacts.
type DraftService struct {
	assembler  *requests.Assembler
	classifier *design.Classifier
	drafts     drafts.Store
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

func NewDraftService(
	assembler *requests.Assembler,
	classifier *design.Classifier,
	draftStore drafts.Store,
	m *metrics.Metrics,
	logger *zap.Logger,
) *DraftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftService{
		assembler:  assembler,
		classifier: classifier,
		drafts:     draftStore,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// Get loads a draft, starting an empty one when none is saved under id.
func (s *DraftService) Get(ctx context.Context, userID uuid.UUID, id string) (*drafts.Draft, error) {
	d, err := s.drafts.Load(ctx, userID, id)
	if errors.Is(err, drafts.ErrNotFound) {
		d = &drafts.Draft{ID: id, UserID: userID}
		s.quote(d)
		return d, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// SaveForm replaces the form state of a draft and recomputes its quote.
func (s *DraftService) SaveForm(ctx context.Context, userID uuid.UUID, id string, form models.RequestForm) (*drafts.Draft, error) {
	d, err := s.drafts.Update(ctx, userID, id, func(d *drafts.Draft) (bool, error) {
		d.Form = form
		s.touch(d)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return d, nil
}

// AddDesigns feeds one save event to the design collector of a draft and
// returns how many artifacts were added.
func (s *DraftService) AddDesigns(ctx context.Context, userID uuid.UUID, id string, payload design.SavePayload) (*drafts.Draft, int, error) {
	var added []models.DesignArtifact
	d, err := s.drafts.Update(ctx, userID, id, func(d *drafts.Draft) (bool, error) {
		collector := design.NewCollector(s.classifier, d.Artifacts)
		before := collector.Len()
		added = nil
		if collector.Add(payload) == 0 {
			s.quote(d)
			return false, nil
		}
		d.Artifacts = collector.Artifacts()
		added = d.Artifacts[before:]
		s.touch(d)
		return true, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to save draft: %w", err)
	}
	for _, a := range added {
		s.metrics.DesignsCollected(string(a.Origin), 1)
	}
	return d, len(added), nil
}

// AddUploaded records a design stored by the upload endpoint.
func (s *DraftService) AddUploaded(ctx context.Context, userID uuid.UUID, id, url, filename string) (*drafts.Draft, models.DesignArtifact, bool, error) {
	cl := s.classifier.Classify(url)
	artifact := models.DesignArtifact{
		URL:         url,
		Filename:    filename,
		Origin:      models.OriginUploaded,
		Description: cl.Description,
	}
	if artifact.Filename == "" {
		artifact.Filename = cl.Filename
	}

	added := false
	d, err := s.drafts.Update(ctx, userID, id, func(d *drafts.Draft) (bool, error) {
		collector := design.NewCollector(s.classifier, d.Artifacts)
		added = collector.AddArtifact(artifact) > 0
		if !added {
			s.quote(d)
			return false, nil
		}
		d.Artifacts = collector.Artifacts()
		s.touch(d)
		return true, nil
	})
	if err != nil {
		return nil, models.DesignArtifact{}, false, fmt.Errorf("failed to save draft: %w", err)
	}
	if added {
		s.metrics.DesignsCollected(string(artifact.Origin), 1)
	}
	return d, artifact, added, nil
}

func (s *DraftService) quote(d *drafts.Draft) {
	d.Quote = s.assembler.Quote(d.Form).Response()
}

// touch recomputes the quote and stamps the update time before a write.
func (s *DraftService) touch(d *drafts.Draft) {
	s.quote(d)
	d.UpdatedAt = s.now().UTC()
}
