package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"custom-print-backend/internal/models"
	"custom-print-backend/internal/status"
	"custom-print-backend/internal/store"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const requestColumns = `id, user_id, status, technique_id, technique_name, technique_cost, size, quantity,
	color, material, design_url, image_url, unit_cost, fabric_cost, total_cost,
	phone_number, whatsapp_number, delivery_address, notes, admin_notes,
	payment_reference, payment_completed, legacy_fields, schema_version, created_at, updated_at`

// DatabaseClient stores customization requests in Postgres over a direct
// connection to the Supabase database.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// DB exposes the pool for the migrator.
func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

func (d *DatabaseClient) Create(ctx context.Context, r *models.CustomizationRequest) (*models.CustomizationRequest, error) {
	id := r.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	legacy, err := marshalLegacy(r.LegacyFields)
	if err != nil {
		return nil, err
	}

	row := d.db.QueryRowContext(ctx, `
		INSERT INTO customization_requests (
			id, user_id, status, technique_id, technique_name, technique_cost, size, quantity,
			color, material, design_url, image_url, unit_cost, fabric_cost, total_cost,
			phone_number, whatsapp_number, delivery_address, notes, admin_notes,
			payment_reference, payment_completed, legacy_fields, schema_version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING `+requestColumns,
		id, r.UserID, string(r.Status), r.TechniqueID, r.TechniqueName, r.TechniqueCost, r.Size, r.Quantity,
		r.Color, r.Material, r.DesignURL, r.ImageURL, r.UnitCost, r.FabricCost, r.TotalCost,
		r.PhoneNumber, r.WhatsAppNumber, r.DeliveryAddress, r.Notes, r.AdminNotes,
		nullString(r.PaymentReference), r.PaymentCompleted, legacy, r.SchemaVersion,
	)

	created, err := scanRequest(row)
	if err != nil {
		return nil, classifyError("create customization request", err)
	}
	return created, nil
}

func (d *DatabaseClient) Get(ctx context.Context, id uuid.UUID) (*models.CustomizationRequest, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+`
		FROM customization_requests
		WHERE id = $1
	`, id)

	r, err := scanRequest(row)
	if err != nil {
		return nil, classifyError("get customization request", err)
	}
	return r, nil
}

func (d *DatabaseClient) List(ctx context.Context, f store.Filter) ([]models.CustomizationRequest, error) {
	f = f.Normalize()

	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.UserID != uuid.Nil {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := "SELECT " + requestColumns + " FROM customization_requests"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Sort == store.SortAsc {
		query += " ORDER BY created_at ASC"
	} else {
		query += " ORDER BY created_at DESC"
	}
	args = append(args, f.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifyError("list customization requests", err)
	}
	defer rows.Close()

	requests := make([]models.CustomizationRequest, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customization request: %w", err)
		}
		requests = append(requests, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("list customization requests", err)
	}

	return requests, nil
}

func (d *DatabaseClient) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next status.Status, adminNotes string) (*models.CustomizationRequest, error) {
	row := d.db.QueryRowContext(ctx, `
		UPDATE customization_requests
		SET status = $1, admin_notes = $2
		WHERE id = $3 AND status = $4
		RETURNING `+requestColumns,
		string(next), adminNotes, id, string(expected),
	)

	r, err := scanRequest(row)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, classifyError("update customization request status", err)
	}

	// No row matched: either the record is gone or its status moved on.
	if _, err := d.Get(ctx, id); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("failed to update customization request status: %w", store.ErrStatusMismatch)
}

func (d *DatabaseClient) FindByPaymentReference(ctx context.Context, userID uuid.UUID, reference string) (*models.CustomizationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM customization_requests WHERE payment_reference = $1`
	args := []any{reference}
	if userID != uuid.Nil {
		query += ` AND user_id = $2`
		args = append(args, userID)
	}

	r, err := scanRequest(d.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, classifyError("find customization request by payment reference", err)
	}
	return r, nil
}

// Ping checks connectivity and that the requests table exists.
func (d *DatabaseClient) Ping(ctx context.Context) error {
	var one int
	err := d.db.QueryRowContext(ctx, `SELECT 1 FROM customization_requests LIMIT 1`).Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return classifyError("ping customization requests", err)
	}
	return nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.CustomizationRequest, error) {
	var (
		r         models.CustomizationRequest
		st        string
		imageURL  sql.NullString
		reference sql.NullString
		legacy    []byte
	)
	err := row.Scan(
		&r.ID, &r.UserID, &st, &r.TechniqueID, &r.TechniqueName, &r.TechniqueCost, &r.Size, &r.Quantity,
		&r.Color, &r.Material, &r.DesignURL, &imageURL, &r.UnitCost, &r.FabricCost, &r.TotalCost,
		&r.PhoneNumber, &r.WhatsAppNumber, &r.DeliveryAddress, &r.Notes, &r.AdminNotes,
		&reference, &r.PaymentCompleted, &legacy, &r.SchemaVersion, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Status = status.Status(st)
	r.ImageURL = imageURL.String
	r.PaymentReference = reference.String
	if len(legacy) > 0 {
		if err := json.Unmarshal(legacy, &r.LegacyFields); err != nil {
			return nil, fmt.Errorf("failed to decode legacy fields: %w", err)
		}
	}
	return &r, nil
}

// marshalLegacy returns nil for an empty bag so the column stays NULL.
func marshalLegacy(fields map[string]any) (any, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode legacy fields: %w", err)
	}
	return string(raw), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
