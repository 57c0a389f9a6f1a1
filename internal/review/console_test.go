package review

import (
	"context"
	"strings"
	"testing"
	"time"

	"custom-print-backend/internal/budget"
	"custom-print-backend/internal/catalog"
	"custom-print-backend/internal/design"
	"custom-print-backend/internal/models"
	"custom-print-backend/internal/pricing"
	"custom-print-backend/internal/requests"
	"custom-print-backend/internal/status"
	"custom-print-backend/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsole(rs store.RequestStore) *Console {
	c := NewConsole(rs, design.NewParser(design.NewClassifier(design.ClassifierConfig{})), nil, nil)
	c.now = func() time.Time { return time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC) }
	return c
}

func seed(t *testing.T, rs store.RequestStore, artifacts int) *models.CustomizationRequest {
	t.Helper()
	list := make([]models.DesignArtifact, artifacts)
	for i := range list {
		list[i] = models.DesignArtifact{URL: "https://ik.imagekit.io/x/saved-design-" + string(rune('1'+i)) + ".png"}
	}
	r := &models.CustomizationRequest{
		UserID:          uuid.New(),
		Status:          status.Pending,
		PhoneNumber:     "+2348000000000",
		DeliveryAddress: "1 Test St",
		AdminNotes:      budget.EncodeAdminNotes(list),
	}
	if artifacts > 0 {
		r.DesignURL = list[0].URL
	}
	pricing.Quote(4500, 2510, 2).Apply(r)
	created, err := rs.Create(context.Background(), r)
	require.NoError(t, err)
	return created
}

func TestConsole_ApproveThenComplete(t *testing.T) {
	mem := store.NewMemory()
	c := newConsole(mem)
	ctx := context.Background()
	r := seed(t, mem, 1)

	approved, err := c.Approve(ctx, r.ID, "admin@example.com", "print run booked")
	require.NoError(t, err)
	assert.Equal(t, status.Approved, approved.Status)

	completed, err := c.Complete(ctx, r.ID, "admin@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, status.Completed, completed.Status)

	lines := strings.Split(completed.AdminNotes, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "DESIGN_URLS: "))
	assert.Equal(t, "[2026-02-01T09:30:00Z approved by admin@example.com] print run booked", lines[1])
	assert.Equal(t, "[2026-02-01T09:30:00Z completed by admin@example.com]", lines[2])
}

func TestConsole_AssembledRecordListsThreeFilesAndPlaceholder(t *testing.T) {
	mem := store.NewMemory()
	c := newConsole(mem)
	ctx := context.Background()

	list := make([]models.DesignArtifact, 5)
	for i := range list {
		list[i] = models.DesignArtifact{
			URL:      "https://ik.imagekit.io/x/saved-design-" + string(rune('1'+i)) + ".png",
			Filename: "saved-design-" + string(rune('1'+i)) + ".png",
		}
	}
	form := models.RequestForm{
		TechniqueID:     "DTF Printing",
		Size:            "M",
		Color:           "Black",
		Material:        "Cotton",
		Quantity:        1,
		PhoneNumber:     "+2348000000000",
		DeliveryAddress: "1 Test St",
		CustomerNotes:   "style like https://pinterest.com/pin/123",
	}
	r, err := requests.NewAssembler(catalog.Default()).Assemble(uuid.New(), form, list, "T100")
	require.NoError(t, err)
	created, err := mem.Create(ctx, r)
	require.NoError(t, err)

	d, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, d.DesignFiles, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, list[i].URL, d.DesignFiles[i].URL)
		assert.Equal(t, list[i].Filename, d.DesignFiles[i].Filename)
	}
	assert.True(t, d.DesignFiles[3].Placeholder)
	assert.Contains(t, d.DesignFiles[3].Description, "2 additional")
}

func TestConsole_RepeatApproveRejected(t *testing.T) {
	mem := store.NewMemory()
	c := newConsole(mem)
	ctx := context.Background()
	r := seed(t, mem, 1)

	_, err := c.Approve(ctx, r.ID, "", "")
	require.NoError(t, err)
	_, err = c.Approve(ctx, r.ID, "", "")
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
}

func TestConsole_RejectAfterCompletedRejected(t *testing.T) {
	mem := store.NewMemory()
	c := newConsole(mem)
	ctx := context.Background()
	r := seed(t, mem, 1)

	_, err := c.Approve(ctx, r.ID, "", "")
	require.NoError(t, err)
	_, err = c.Complete(ctx, r.ID, "", "")
	require.NoError(t, err)

	_, err = c.Reject(ctx, r.ID, "", "")
	assert.ErrorIs(t, err, status.ErrInvalidTransition)

	got, err := mem.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, status.Completed, got.Status)
}

func TestConsole_CompleteRequiresApproval(t *testing.T) {
	mem := store.NewMemory()
	c := newConsole(mem)
	r := seed(t, mem, 1)

	_, err := c.Complete(context.Background(), r.ID, "", "")
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
}

func TestConsole_UnknownRequest(t *testing.T) {
	c := newConsole(store.NewMemory())
	_, err := c.Approve(context.Background(), uuid.New(), "", "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// racingStore moves the record to rejected between read and update, as a
// second reviewer would.
type racingStore struct {
	*store.Memory
}

func (r racingStore) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next status.Status, notes string) (*models.CustomizationRequest, error) {
	if _, err := r.Memory.UpdateStatus(ctx, id, expected, status.Rejected, ""); err != nil {
		return nil, err
	}
	return r.Memory.UpdateStatus(ctx, id, expected, next, notes)
}

func TestConsole_ConcurrentReviewerConflict(t *testing.T) {
	mem := store.NewMemory()
	r := seed(t, mem, 1)
	c := newConsole(racingStore{mem})

	_, err := c.Approve(context.Background(), r.ID, "", "")
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "no longer Pending")
}

func TestConsole_GetDetail(t *testing.T) {
	mem := store.NewMemory()
	c := newConsole(mem)
	r := seed(t, mem, 5)

	d, err := c.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.True(t, d.CostConsistent)
	assert.Equal(t, int64(14020), d.Cost.TotalCost)

	require.Len(t, d.DesignFiles, 4)
	assert.True(t, d.DesignFiles[3].Placeholder)
	assert.Contains(t, d.DesignFiles[3].Description, "2 additional")

	resp := d.Response()
	assert.Equal(t, "1 Test St", resp.Contact.DeliveryAddress)
	assert.True(t, resp.Cost.Consistent)
}

func TestConsole_GetDetailFlagsInconsistentCost(t *testing.T) {
	mem := store.NewMemory()
	c := newConsole(mem)
	r := &models.CustomizationRequest{Status: status.Pending, FabricCost: 4500, TechniqueCost: 2510, Quantity: 2, UnitCost: 7010, TotalCost: 1}
	created, err := mem.Create(context.Background(), r)
	require.NoError(t, err)

	d, err := c.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, d.CostConsistent)
	assert.Equal(t, int64(14020), d.Cost.TotalCost)
	assert.NotNil(t, d.DesignFiles)
}

func TestConsole_ListFiltersAndSorts(t *testing.T) {
	mem := store.NewMemory()
	c := newConsole(mem)
	ctx := context.Background()
	a := seed(t, mem, 1)
	time.Sleep(2 * time.Millisecond)
	b := seed(t, mem, 1)
	_, err := c.Reject(ctx, a.ID, "", "")
	require.NoError(t, err)

	pending, err := c.List(ctx, store.Filter{Status: status.Pending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)

	asc, err := c.List(ctx, store.Filter{Sort: store.SortAsc})
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, a.ID, asc[0].ID)
}
