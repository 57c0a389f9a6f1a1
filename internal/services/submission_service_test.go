package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"custom-print-backend/internal/catalog"
	"custom-print-backend/internal/drafts"
	"custom-print-backend/internal/metrics"
	"custom-print-backend/internal/models"
	"custom-print-backend/internal/requests"
	"custom-print-backend/internal/store"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts Create calls and can hold them until released.
type countingStore struct {
	*store.Memory
	creates atomic.Int32
	gate    chan struct{}
}

func (c *countingStore) Create(ctx context.Context, r *models.CustomizationRequest) (*models.CustomizationRequest, error) {
	c.creates.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	return c.Memory.Create(ctx, r)
}

func validForm() models.RequestForm {
	return models.RequestForm{
		TechniqueID:     "DTF Printing",
		Size:            "M",
		Quantity:        2,
		PhoneNumber:     "+2348000000000",
		DeliveryAddress: "1 Test St",
	}
}

func canvasDesign() []models.DesignArtifact {
	return []models.DesignArtifact{{
		URL:      "https://ik.imagekit.io/x/saved-design-1.png",
		Filename: "saved-design-1.png",
		Origin:   models.OriginCanvas,
	}}
}

func newSubmissionService(t *testing.T, rs store.RequestStore, ds drafts.Store) *SubmissionService {
	t.Helper()
	if ds == nil {
		ds = drafts.NewMemoryStore(time.Hour)
	}
	return NewSubmissionService(
		requests.NewAssembler(catalog.Default()),
		rs, ds,
		metrics.New(prometheus.NewRegistry()),
		nil,
	)
}

func TestSubmit_DuplicateReferenceCreatesOnce(t *testing.T) {
	cs := &countingStore{Memory: store.NewMemory()}
	svc := newSubmissionService(t, cs, nil)
	user := uuid.New()
	ctx := context.Background()

	first, err := svc.Submit(ctx, user, validForm(), canvasDesign(), "T123")
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := svc.Submit(ctx, user, validForm(), canvasDesign(), "T123")
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Request.ID, second.Request.ID)
	assert.Equal(t, int32(1), cs.creates.Load())
}

func TestSubmit_ConcurrentCallbacksCreateOnce(t *testing.T) {
	cs := &countingStore{Memory: store.NewMemory(), gate: make(chan struct{})}
	svc := newSubmissionService(t, cs, nil)
	user := uuid.New()

	const callers = 8
	results := make([]*SubmissionResult, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Submit(context.Background(), user, validForm(), canvasDesign(), "T-RACE")
		}(i)
	}

	require.Eventually(t, func() bool { return cs.creates.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(cs.gate)
	wg.Wait()

	assert.Equal(t, int32(1), cs.creates.Load())
	created := 0
	for i := range results {
		require.NoError(t, errs[i])
		if !results[i].Duplicate {
			created++
		}
		assert.Equal(t, results[0].Request.ID, results[i].Request.ID)
	}
	assert.Equal(t, 1, created)
}

func TestSubmit_StoredReferenceIsDuplicate(t *testing.T) {
	mem := store.NewMemory()
	user := uuid.New()
	ctx := context.Background()

	first, err := newSubmissionService(t, mem, nil).Submit(ctx, user, validForm(), canvasDesign(), "T-OLD")
	require.NoError(t, err)

	// A fresh process has no memory of the reference; the store rejects it.
	res, err := newSubmissionService(t, mem, nil).Submit(ctx, user, validForm(), canvasDesign(), "T-OLD")
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, first.Request.ID, res.Request.ID)
}

func TestSubmit_SameReferenceDifferentUsers(t *testing.T) {
	cs := &countingStore{Memory: store.NewMemory()}
	svc := newSubmissionService(t, cs, nil)
	ctx := context.Background()

	first, err := svc.Submit(ctx, uuid.New(), validForm(), canvasDesign(), "T-SHARED")
	require.NoError(t, err)
	second, err := svc.Submit(ctx, uuid.New(), validForm(), canvasDesign(), "T-SHARED")
	require.NoError(t, err)

	assert.False(t, second.Duplicate)
	assert.NotEqual(t, first.Request.ID, second.Request.ID)
	assert.Equal(t, int32(2), cs.creates.Load())
}

// globalRefStore rejects a reference stored by any user.
type globalRefStore struct {
	*store.Memory
}

func (g globalRefStore) Create(ctx context.Context, r *models.CustomizationRequest) (*models.CustomizationRequest, error) {
	if _, err := g.Memory.FindByPaymentReference(ctx, uuid.Nil, r.PaymentReference); err == nil {
		return nil, store.ErrDuplicateReference
	}
	return g.Memory.Create(ctx, r)
}

func TestSubmit_ReferenceHeldByOtherUserIsConflict(t *testing.T) {
	gs := globalRefStore{Memory: store.NewMemory()}
	svc := newSubmissionService(t, gs, nil)
	ctx := context.Background()

	_, err := svc.Submit(ctx, uuid.New(), validForm(), canvasDesign(), "T-HELD")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, uuid.New(), validForm(), canvasDesign(), "T-HELD")
	assert.ErrorIs(t, err, store.ErrDuplicateReference)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestSubmit_WithoutReferenceAlwaysCreates(t *testing.T) {
	cs := &countingStore{Memory: store.NewMemory()}
	svc := newSubmissionService(t, cs, nil)
	user := uuid.New()

	for i := 0; i < 2; i++ {
		res, err := svc.Submit(context.Background(), user, validForm(), canvasDesign(), "")
		require.NoError(t, err)
		assert.False(t, res.Duplicate)
	}
	assert.Equal(t, int32(2), cs.creates.Load())
}

func TestSubmit_ValidationBlocksStore(t *testing.T) {
	cs := &countingStore{Memory: store.NewMemory()}
	svc := newSubmissionService(t, cs, nil)
	form := validForm()
	form.TechniqueID = ""

	res, err := svc.Submit(context.Background(), uuid.New(), form, canvasDesign(), "T1")
	require.Error(t, err)
	assert.Nil(t, res)

	verrs, ok := err.(requests.ValidationErrors)
	require.True(t, ok)
	assert.True(t, verrs.Has("technique_id"))
	assert.Equal(t, int32(0), cs.creates.Load())
}

func TestSubmitDraft_DTFScenario(t *testing.T) {
	mem := store.NewMemory()
	ds := drafts.NewMemoryStore(time.Hour)
	svc := newSubmissionService(t, mem, ds)
	user := uuid.New()
	ctx := context.Background()

	require.NoError(t, ds.Save(ctx, &drafts.Draft{ID: "d1", UserID: user, Form: validForm(), Artifacts: canvasDesign()}))

	res, err := svc.SubmitDraft(ctx, user, "d1", "")
	require.NoError(t, err)

	r := res.Request
	price := catalog.Default().DefaultProductPrice
	assert.Equal(t, (price+2510)*2, r.TotalCost)
	assert.Equal(t, "https://ik.imagekit.io/x/saved-design-1.png", r.DesignURL)
	assert.True(t, strings.HasPrefix(r.AdminNotes, "DESIGN_URLS: https://ik.imagekit.io/x/saved-design-1.png"))

	stored, err := mem.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.TotalCost, stored.TotalCost)

	_, err = ds.Load(ctx, user, "d1")
	assert.ErrorIs(t, err, drafts.ErrNotFound, "draft is removed after submission")
}

func TestSubmitDraft_RetriedCallbackAfterDraftDeleted(t *testing.T) {
	mem := store.NewMemory()
	ds := drafts.NewMemoryStore(time.Hour)
	user := uuid.New()
	ctx := context.Background()
	require.NoError(t, ds.Save(ctx, &drafts.Draft{ID: "d1", UserID: user, Form: validForm(), Artifacts: canvasDesign()}))

	first, err := newSubmissionService(t, mem, ds).SubmitDraft(ctx, user, "d1", "T-CB")
	require.NoError(t, err)

	retry, err := newSubmissionService(t, mem, ds).SubmitDraft(ctx, user, "d1", "T-CB")
	require.NoError(t, err)
	assert.True(t, retry.Duplicate)
	assert.Equal(t, first.Request.ID, retry.Request.ID)

	_, err = newSubmissionService(t, mem, ds).SubmitDraft(ctx, user, "d1", "")
	assert.ErrorIs(t, err, drafts.ErrNotFound)
}
