package models

import (
	"time"

	"custom-print-backend/internal/status"

	"github.com/google/uuid"
)

// CurrentSchemaVersion is written on every new record. Records imported from
// the previous storefront carry version 0 and may hold LegacyFields.
const CurrentSchemaVersion = 2

type CustomizationRequest struct {
	ID     uuid.UUID     `json:"id"`
	UserID uuid.UUID     `json:"user_id"`
	Status status.Status `json:"status"`

	TechniqueID   string `json:"technique_id"`
	TechniqueName string `json:"technique_name"`
	TechniqueCost int64  `json:"technique_cost"`
	Size          string `json:"size"`
	Quantity      int    `json:"quantity"`
	Color         string `json:"color,omitempty"`
	Material      string `json:"material,omitempty"`

	DesignURL string `json:"design_url"`
	ImageURL  string `json:"image_url,omitempty"`

	UnitCost   int64 `json:"unit_cost"`
	FabricCost int64 `json:"fabric_cost"`
	TotalCost  int64 `json:"total_cost"`

	PhoneNumber     string `json:"phone_number"`
	WhatsAppNumber  string `json:"whatsapp_number,omitempty"`
	DeliveryAddress string `json:"delivery_address"`

	Notes      string `json:"notes"`
	AdminNotes string `json:"admin_notes"`

	PaymentReference string `json:"payment_reference,omitempty"`
	PaymentCompleted bool   `json:"payment_completed"`

	LegacyFields  map[string]any `json:"legacy_fields,omitempty"`
	SchemaVersion int            `json:"schema_version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequestForm is the customer-entered part of a submission. It is saved in
// drafts between steps and validated at submit time.
type RequestForm struct {
	TechniqueID     string `json:"technique_id" validate:"notblank"`
	Size            string `json:"size" validate:"notblank"`
	Quantity        int    `json:"quantity"`
	Color           string `json:"color,omitempty"`
	Material        string `json:"material,omitempty"`
	PhoneNumber     string `json:"phone_number" validate:"notblank"`
	WhatsAppNumber  string `json:"whatsapp_number,omitempty"`
	DeliveryAddress string `json:"delivery_address" validate:"notblank"`
	CustomerNotes   string `json:"customer_notes,omitempty" validate:"max=500"`
}
