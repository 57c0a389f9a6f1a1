// Package store defines the document store that customization requests are
// persisted in, and its error taxonomy.
package store

import (
	"context"
	"errors"
	"fmt"

	"custom-print-backend/internal/models"
	"custom-print-backend/internal/status"

	"github.com/google/uuid"
)

// Collection is the table/collection holding customization requests.
const Collection = "customization_requests"

var (
	ErrNotFound = errors.New("customization request not found")
	// ErrCollectionMissing means the backing table does not exist. It needs
	// operator action, retrying will not help.
	ErrCollectionMissing = errors.New("customization request collection is missing")
	// ErrStatusMismatch is returned by a conditional status update when the
	// stored status is not the expected one.
	ErrStatusMismatch = errors.New("status mismatch")
	// ErrDuplicateReference is returned by Create when the user already has
	// a record with the same payment reference.
	ErrDuplicateReference = errors.New("payment reference already submitted")
)

// TransientError wraps a network or timeout failure talking to the backend.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: temporarily unavailable: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is worth a manual retry.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// Filter selects records for List. Zero values mean "any".
type Filter struct {
	Status status.Status
	UserID uuid.UUID
	Sort   SortOrder
	Limit  int
}

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Normalize fills defaults and clamps the limit.
func (f Filter) Normalize() Filter {
	if f.Sort != SortAsc {
		f.Sort = SortDesc
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// RequestStore persists customization requests.
type RequestStore interface {
	// Create stores r, assigning its ID when it is zero, and returns the
	// stored record.
	Create(ctx context.Context, r *models.CustomizationRequest) (*models.CustomizationRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.CustomizationRequest, error)
	List(ctx context.Context, f Filter) ([]models.CustomizationRequest, error)
	// UpdateStatus moves the record from expected to next and replaces its
	// admin notes, failing with ErrStatusMismatch if the stored status is
	// not expected.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next status.Status, adminNotes string) (*models.CustomizationRequest, error)
	FindByPaymentReference(ctx context.Context, userID uuid.UUID, reference string) (*models.CustomizationRequest, error)
	Ping(ctx context.Context) error
}
