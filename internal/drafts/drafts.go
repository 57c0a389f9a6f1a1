// Package drafts keeps in-progress customization requests between form steps.
package drafts

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"custom-print-backend/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("draft not found")
	ErrInvalidID = errors.New("invalid draft id")
)

var draftIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether id can be used as a draft key.
func ValidID(id string) bool {
	return draftIDPattern.MatchString(id)
}

// Draft is the serializable state of one customer's request in progress.
type Draft struct {
	ID        string                  `json:"id"`
	UserID    uuid.UUID               `json:"user_id"`
	Form      models.RequestForm      `json:"form"`
	Artifacts []models.DesignArtifact `json:"artifacts"`
	Quote     models.QuoteResponse    `json:"quote"`
	UpdatedAt time.Time               `json:"updated_at"`
}

func (d *Draft) Response() models.DraftResponse {
	artifacts := d.Artifacts
	if artifacts == nil {
		artifacts = []models.DesignArtifact{}
	}
	return models.DraftResponse{
		ID:        d.ID,
		Form:      d.Form,
		Artifacts: artifacts,
		Quote:     d.Quote,
		UpdatedAt: d.UpdatedAt,
	}
}

// UpdateFunc mutates a draft in place and reports whether it changed. A
// draft that does not exist yet is passed in empty with its ID and UserID set.
// It may be called more than once per Update and must only depend on d.
type UpdateFunc func(d *Draft) (bool, error)

// Store persists drafts per user. Saving is explicit; nothing is written
// behind the caller's back.
type Store interface {
	Save(ctx context.Context, d *Draft) error
	Load(ctx context.Context, userID uuid.UUID, id string) (*Draft, error)
	// Update applies fn to the stored draft and writes the result. Updates of
	// the same draft do not overwrite each other.
	Update(ctx context.Context, userID uuid.UUID, id string, fn UpdateFunc) (*Draft, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) error
}

// MemoryStore keeps drafts in process. Expired drafts are dropped on read.
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	drafts map[string]memoryEntry
}

type memoryEntry struct {
	draft   Draft
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:    ttl,
		now:    time.Now,
		drafts: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Save(ctx context.Context, d *Draft) error {
	if !ValidID(d.ID) {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(d)
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, userID uuid.UUID, id string) (*Draft, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.get(userID, id)
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *MemoryStore) Update(ctx context.Context, userID uuid.UUID, id string, fn UpdateFunc) (*Draft, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.get(userID, id)
	if !ok {
		d = &Draft{ID: id, UserID: userID}
	}
	changed, err := fn(d)
	if err != nil {
		return nil, err
	}
	if changed {
		m.put(d)
	}
	return d, nil
}

// get returns a copy of a live draft. The caller holds mu.
func (m *MemoryStore) get(userID uuid.UUID, id string) (*Draft, bool) {
	k := key(userID, id)
	entry, ok := m.drafts[k]
	if !ok {
		return nil, false
	}
	if !m.now().Before(entry.expires) {
		delete(m.drafts, k)
		return nil, false
	}
	cp := entry.draft
	cp.Artifacts = append([]models.DesignArtifact(nil), entry.draft.Artifacts...)
	return &cp, true
}

// put stores a copy of d. The caller holds mu.
func (m *MemoryStore) put(d *Draft) {
	cp := *d
	cp.Artifacts = append([]models.DesignArtifact(nil), d.Artifacts...)
	m.drafts[key(d.UserID, d.ID)] = memoryEntry{draft: cp, expires: m.now().Add(m.ttl)}
}

func (m *MemoryStore) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, key(userID, id))
	return nil
}

func key(userID uuid.UUID, id string) string {
	return "drafts:" + userID.String() + ":" + id
}
