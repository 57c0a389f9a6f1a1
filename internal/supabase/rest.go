package supabase

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"custom-print-backend/internal/models"
	"custom-print-backend/internal/status"
	"custom-print-backend/internal/store"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

// RestClient stores customization requests through the Supabase REST API
// (PostgREST). It is used when the service has no direct database access.
type RestClient struct {
	client *Client
	table  string
}

func NewRestClient(client *Client) *RestClient {
	return &RestClient{client: client, table: store.Collection}
}

func (r *RestClient) Create(ctx context.Context, req *models.CustomizationRequest) (*models.CustomizationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, &store.TransientError{Op: "create customization request", Err: err}
	}

	var rows []models.CustomizationRequest
	_, err := r.client.Supabase.From(r.table).
		Insert(insertPayload(req), false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, classifyRestError("create customization request", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to create customization request: empty response")
	}
	return &rows[0], nil
}

func (r *RestClient) Get(ctx context.Context, id uuid.UUID) (*models.CustomizationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, &store.TransientError{Op: "get customization request", Err: err}
	}

	var rows []models.CustomizationRequest
	_, err := r.client.Supabase.From(r.table).
		Select("*", "", false).
		Eq("id", id.String()).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, classifyRestError("get customization request", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to get customization request: %w", store.ErrNotFound)
	}
	return &rows[0], nil
}

func (r *RestClient) List(ctx context.Context, f store.Filter) ([]models.CustomizationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, &store.TransientError{Op: "list customization requests", Err: err}
	}
	f = f.Normalize()

	q := r.client.Supabase.From(r.table).Select("*", "", false)
	if f.Status != "" {
		q = q.Eq("status", string(f.Status))
	}
	if f.UserID != uuid.Nil {
		q = q.Eq("user_id", f.UserID.String())
	}
	q = q.Order("created_at", &postgrest.OrderOpts{Ascending: f.Sort == store.SortAsc}).
		Limit(f.Limit, "")

	rows := make([]models.CustomizationRequest, 0)
	if _, err := q.ExecuteTo(&rows); err != nil {
		return nil, classifyRestError("list customization requests", err)
	}
	return rows, nil
}

func (r *RestClient) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next status.Status, adminNotes string) (*models.CustomizationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, &store.TransientError{Op: "update customization request status", Err: err}
	}

	var rows []models.CustomizationRequest
	_, err := r.client.Supabase.From(r.table).
		Update(map[string]any{"status": string(next), "admin_notes": adminNotes}, "representation", "").
		Eq("id", id.String()).
		Eq("status", string(expected)).
		ExecuteTo(&rows)
	if err != nil {
		return nil, classifyRestError("update customization request status", err)
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}

	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("failed to update customization request status: %w", store.ErrStatusMismatch)
}

func (r *RestClient) FindByPaymentReference(ctx context.Context, userID uuid.UUID, reference string) (*models.CustomizationRequest, error) {
	q := r.client.Supabase.From(r.table).
		Select("*", "", false).
		Eq("payment_reference", reference)
	if userID != uuid.Nil {
		q = q.Eq("user_id", userID.String())
	}

	var rows []models.CustomizationRequest
	if _, err := q.Limit(1, "").ExecuteTo(&rows); err != nil {
		return nil, classifyRestError("find customization request by payment reference", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to find customization request by payment reference: %w", store.ErrNotFound)
	}
	return &rows[0], nil
}

func (r *RestClient) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &store.TransientError{Op: "ping customization requests", Err: err}
	}
	var rows []map[string]any
	_, err := r.client.Supabase.From(r.table).Select("id", "", false).Limit(1, "").ExecuteTo(&rows)
	return classifyRestError("ping customization requests", err)
}

// insertPayload leaves out columns the database fills in.
func insertPayload(r *models.CustomizationRequest) map[string]any {
	id := r.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	row := map[string]any{
		"id":                id.String(),
		"user_id":           r.UserID.String(),
		"status":            string(r.Status),
		"technique_id":      r.TechniqueID,
		"technique_name":    r.TechniqueName,
		"technique_cost":    r.TechniqueCost,
		"size":              r.Size,
		"quantity":          r.Quantity,
		"color":             r.Color,
		"material":          r.Material,
		"design_url":        r.DesignURL,
		"image_url":         r.ImageURL,
		"unit_cost":         r.UnitCost,
		"fabric_cost":       r.FabricCost,
		"total_cost":        r.TotalCost,
		"phone_number":      r.PhoneNumber,
		"whatsapp_number":   r.WhatsAppNumber,
		"delivery_address":  r.DeliveryAddress,
		"notes":             r.Notes,
		"admin_notes":       r.AdminNotes,
		"payment_completed": r.PaymentCompleted,
		"schema_version":    r.SchemaVersion,
	}
	if r.PaymentReference != "" {
		row["payment_reference"] = r.PaymentReference
	}
	if len(r.LegacyFields) > 0 {
		row["legacy_fields"] = r.LegacyFields
	}
	return row
}

// classifyRestError maps PostgREST failures, reported as "(<code>) <message>",
// onto the store error taxonomy.
func classifyRestError(op string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &store.TransientError{Op: op, Err: err}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "(42P01)"), strings.Contains(msg, "(PGRST205)"), strings.Contains(msg, "(PGRST202)"):
		return fmt.Errorf("failed to %s: %w: %s", op, store.ErrCollectionMissing, msg)
	case strings.Contains(msg, "(23505)"):
		return fmt.Errorf("failed to %s: %w", op, store.ErrDuplicateReference)
	case strings.Contains(msg, "(P0001)"):
		return fmt.Errorf("failed to %s: %w: %s", op, status.ErrInvalidTransition, msg)
	case strings.Contains(msg, "(PGRST116)"):
		return fmt.Errorf("failed to %s: %w", op, store.ErrNotFound)
	case strings.Contains(msg, "(PGRST000)"), strings.Contains(msg, "(PGRST001)"), strings.Contains(msg, "(PGRST003)"):
		return &store.TransientError{Op: op, Err: err}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
