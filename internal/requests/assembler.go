// Package requests validates customer form state and assembles it into a
// customization request record.
package requests

import (
	"strings"
	"time"

	"custom-print-backend/internal/budget"
	"custom-print-backend/internal/catalog"
	"custom-print-backend/internal/models"
	"custom-print-backend/internal/pricing"
	"custom-print-backend/internal/status"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Assembler struct {
	catalog  *catalog.Catalog
	validate *validatorv10.Validate
	now      func() time.Time
}

func NewAssembler(c *catalog.Catalog) *Assembler {
	return &Assembler{
		catalog:  c,
		validate: NewValidator(),
		now:      time.Now,
	}
}

// Validate checks the required fields of form and that its technique exists
// in the catalog.
func (a *Assembler) Validate(form models.RequestForm) error {
	err := ValidateStruct(a.validate, form)
	verrs, _ := err.(ValidationErrors)
	if err != nil && verrs == nil {
		return err
	}
	if strings.TrimSpace(form.TechniqueID) != "" && !verrs.Has("technique_id") {
		if _, ok := a.catalog.Technique(form.TechniqueID); !ok {
			verrs = append(ValidationErrors{{Field: "technique_id", Message: "unknown printing technique"}}, verrs...)
		}
	}
	if len(verrs) == 0 {
		return nil
	}
	return verrs
}

// Quote prices the current form state. An unknown or missing technique
// contributes no cost.
func (a *Assembler) Quote(form models.RequestForm) pricing.Breakdown {
	var techniqueCost int64
	if t, ok := a.catalog.Technique(form.TechniqueID); ok {
		techniqueCost = t.Cost
	}
	return pricing.Quote(a.catalog.ProductPrice(form.Material), techniqueCost, form.Quantity)
}

// Assemble builds a Pending record from validated form state and the
// collected design artifacts.
func (a *Assembler) Assemble(userID uuid.UUID, form models.RequestForm, artifacts []models.DesignArtifact, paymentRef string) (*models.CustomizationRequest, error) {
	if err := a.Validate(form); err != nil {
		return nil, err
	}
	technique, _ := a.catalog.Technique(form.TechniqueID)
	paymentRef = strings.TrimSpace(paymentRef)

	now := a.now().UTC()
	r := &models.CustomizationRequest{
		UserID:           userID,
		Status:           status.Pending,
		TechniqueID:      technique.ID,
		TechniqueName:    technique.Name,
		Size:             strings.TrimSpace(form.Size),
		Color:            strings.TrimSpace(form.Color),
		Material:         strings.TrimSpace(form.Material),
		PhoneNumber:      strings.TrimSpace(form.PhoneNumber),
		WhatsAppNumber:   strings.TrimSpace(form.WhatsAppNumber),
		DeliveryAddress:  strings.TrimSpace(form.DeliveryAddress),
		PaymentReference: paymentRef,
		PaymentCompleted: paymentRef != "",
		SchemaVersion:    models.CurrentSchemaVersion,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	pricing.Quote(a.catalog.ProductPrice(form.Material), technique.Cost, form.Quantity).Apply(r)

	persistent := persistentURLs(artifacts)
	switch len(persistent) {
	case 0:
		r.DesignURL = models.DesignPlaceholder(len(artifacts))
	case 1:
		r.DesignURL = persistent[0]
	default:
		r.DesignURL = persistent[0]
		r.ImageURL = persistent[1]
	}

	var extra []string
	if len(persistent) > 2 {
		extra = persistent[2:]
	}
	r.Notes = budget.EncodeNotes(budget.NotesInput{
		DesignCount:   len(artifacts),
		TechniqueName: technique.Name,
		ExtraURLs:     extra,
		CustomerNotes: form.CustomerNotes,
	})
	r.AdminNotes = budget.EncodeAdminNotes(artifacts)
	return r, nil
}

// persistentURLs returns the http(s) artifact URLs in collection order.
// Inline data and session-only references cannot be loaded by an admin.
func persistentURLs(artifacts []models.DesignArtifact) []string {
	var out []string
	for _, a := range artifacts {
		if a.Placeholder {
			continue
		}
		lower := strings.ToLower(strings.TrimSpace(a.URL))
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			out = append(out, strings.TrimSpace(a.URL))
		}
	}
	return out
}
