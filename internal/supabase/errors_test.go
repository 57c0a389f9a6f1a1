package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"custom-print-backend/internal/models"
	"custom-print-backend/internal/status"
	"custom-print-backend/internal/store"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		transient bool
	}{
		{name: "no rows", err: sql.ErrNoRows, target: store.ErrNotFound},
		{name: "missing table", err: &pq.Error{Code: "42P01", Message: `relation "customization_requests" does not exist`}, target: store.ErrCollectionMissing},
		{name: "unique violation", err: &pq.Error{Code: "23505"}, target: store.ErrDuplicateReference},
		{name: "status trigger", err: &pq.Error{Code: "P0001", Message: "invalid status transition: rejected -> approved"}, target: status.ErrInvalidTransition},
		{name: "connection failure", err: &pq.Error{Code: "08006"}, transient: true},
		{name: "too many connections", err: &pq.Error{Code: "53300"}, transient: true},
		{name: "deadline", err: context.DeadlineExceeded, transient: true},
		{name: "dial", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, transient: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError("op", tt.err)
			assert.Equal(t, tt.transient, store.IsTransient(got))
			if tt.target != nil {
				assert.ErrorIs(t, got, tt.target)
			}
		})
	}

	assert.NoError(t, classifyError("op", nil))
	other := classifyError("op", &pq.Error{Code: "22001"})
	assert.False(t, store.IsTransient(other))
	assert.Contains(t, other.Error(), "failed to op")
}

func TestClassifyRestError(t *testing.T) {
	assert.ErrorIs(t, classifyRestError("op", fmt.Errorf("(42P01) relation does not exist")), store.ErrCollectionMissing)
	assert.ErrorIs(t, classifyRestError("op", fmt.Errorf("(PGRST205) Could not find the table")), store.ErrCollectionMissing)
	assert.ErrorIs(t, classifyRestError("op", fmt.Errorf("(23505) duplicate key value")), store.ErrDuplicateReference)
	assert.ErrorIs(t, classifyRestError("op", fmt.Errorf("(P0001) invalid status transition")), status.ErrInvalidTransition)
	assert.True(t, store.IsTransient(classifyRestError("op", &net.OpError{Op: "dial", Err: errors.New("refused")})))
	assert.True(t, store.IsTransient(classifyRestError("op", fmt.Errorf("(PGRST001) database connection error"))))
	assert.NoError(t, classifyRestError("op", nil))
}

func TestInsertPayload(t *testing.T) {
	r := &models.CustomizationRequest{
		UserID:    uuid.New(),
		Status:    status.Pending,
		DesignURL: "https://example.com/a.png",
		Quantity:  2,
	}
	row := insertPayload(r)

	assert.NotEqual(t, uuid.Nil.String(), row["id"])
	assert.Equal(t, "Pending", row["status"])
	assert.NotContains(t, row, "payment_reference")
	assert.NotContains(t, row, "legacy_fields")
	assert.NotContains(t, row, "created_at")

	r.PaymentReference = "T1"
	r.LegacyFields = map[string]any{"designUrls": []any{"x"}}
	row = insertPayload(r)
	assert.Equal(t, "T1", row["payment_reference"])
	assert.Contains(t, row, "legacy_fields")
}

func TestDesignPath(t *testing.T) {
	user := uuid.MustParse("5b0c1d4e-2a51-4b1e-9a35-0d6f3f1c2a77")
	p := DesignPath(user, "draft 1", "../My Logo (final).png")

	assert.True(t, strings.HasPrefix(p, "users/5b0c1d4e-2a51-4b1e-9a35-0d6f3f1c2a77/drafts/draft-1/"))
	assert.True(t, strings.HasSuffix(p, "-My-Logo-final-.png"))
	assert.NotContains(t, p, "..")

	assert.True(t, strings.HasSuffix(DesignPath(user, "d", "   "), "-design"))
}
