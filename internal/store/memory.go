package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"custom-print-backend/internal/models"
	"custom-print-backend/internal/status"

	"github.com/google/uuid"
)

// Memory is an in-process RequestStore for development and tests. It
// enforces the same status and payment reference rules as the SQL schema.
type Memory struct {
	mu      sync.RWMutex
	records map[uuid.UUID]models.CustomizationRequest
	order   []uuid.UUID
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[uuid.UUID]models.CustomizationRequest),
		now:     time.Now,
	}
}

func (m *Memory) Create(ctx context.Context, r *models.CustomizationRequest) (*models.CustomizationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransientError{Op: "create", Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.PaymentReference != "" {
		for _, existing := range m.records {
			if existing.UserID == r.UserID && existing.PaymentReference == r.PaymentReference {
				return nil, ErrDuplicateReference
			}
		}
	}

	rec := cloneRequest(*r)
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if _, ok := m.records[rec.ID]; ok {
		return nil, fmt.Errorf("failed to create customization request: id %s already exists", rec.ID)
	}
	now := m.now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)

	out := cloneRequest(rec)
	return &out, nil
}

func (m *Memory) Get(ctx context.Context, id uuid.UUID) (*models.CustomizationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneRequest(rec)
	return &out, nil
}

func (m *Memory) List(ctx context.Context, f Filter) ([]models.CustomizationRequest, error) {
	f = f.Normalize()
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.CustomizationRequest, 0, len(m.order))
	for _, id := range m.order {
		rec := m.records[id]
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		if f.UserID != uuid.Nil && rec.UserID != f.UserID {
			continue
		}
		out = append(out, cloneRequest(rec))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if f.Sort == SortAsc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next status.Status, adminNotes string) (*models.CustomizationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Status != expected {
		return nil, ErrStatusMismatch
	}
	if !status.CanTransition(expected, next) {
		return nil, status.ErrInvalidTransition
	}
	rec.Status = next
	rec.AdminNotes = adminNotes
	rec.UpdatedAt = m.now().UTC()
	m.records[id] = rec

	out := cloneRequest(rec)
	return &out, nil
}

func (m *Memory) FindByPaymentReference(ctx context.Context, userID uuid.UUID, reference string) (*models.CustomizationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		rec := m.records[id]
		if rec.PaymentReference == reference && (userID == uuid.Nil || rec.UserID == userID) {
			out := cloneRequest(rec)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func cloneRequest(r models.CustomizationRequest) models.CustomizationRequest {
	if r.LegacyFields != nil {
		legacy := make(map[string]any, len(r.LegacyFields))
		for k, v := range r.LegacyFields {
			legacy[k] = v
		}
		r.LegacyFields = legacy
	}
	return r
}
