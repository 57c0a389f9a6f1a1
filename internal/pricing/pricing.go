// Package pricing computes the cost breakdown of a customization request.
package pricing

import (
	"errors"
	"fmt"

	"custom-print-backend/internal/models"
)

var ErrTotalMismatch = errors.New("total cost does not match breakdown")

// Breakdown amounts are in minor currency units.
type Breakdown struct {
	FabricCost    int64 `json:"fabric_cost"`
	TechniqueCost int64 `json:"technique_cost"`
	UnitCost      int64 `json:"unit_cost"`
	Quantity      int   `json:"quantity"`
	TotalCost     int64 `json:"total_cost"`
}

// ClampQuantity returns quantity, or 1 when it is not positive.
func ClampQuantity(quantity int) int {
	if quantity < 1 {
		return 1
	}
	return quantity
}

// Quote prices quantity items of a product with a printing technique:
// total = (productPrice + techniqueCost) * quantity.
func Quote(productPrice, techniqueCost int64, quantity int) Breakdown {
	quantity = ClampQuantity(quantity)
	unit := productPrice + techniqueCost
	return Breakdown{
		FabricCost:    productPrice,
		TechniqueCost: techniqueCost,
		UnitCost:      unit,
		Quantity:      quantity,
		TotalCost:     unit * int64(quantity),
	}
}

// Apply copies the breakdown onto a record.
func (b Breakdown) Apply(r *models.CustomizationRequest) {
	r.FabricCost = b.FabricCost
	r.TechniqueCost = b.TechniqueCost
	r.UnitCost = b.UnitCost
	r.Quantity = b.Quantity
	r.TotalCost = b.TotalCost
}

func (b Breakdown) Response() models.QuoteResponse {
	return models.QuoteResponse{
		FabricCost:    b.FabricCost,
		TechniqueCost: b.TechniqueCost,
		UnitCost:      b.UnitCost,
		Quantity:      b.Quantity,
		TotalCost:     b.TotalCost,
	}
}

// FromRecord recomputes the breakdown from a stored record's inputs.
func FromRecord(r *models.CustomizationRequest) Breakdown {
	return Quote(r.FabricCost, r.TechniqueCost, r.Quantity)
}

// Check verifies the stored totals of r against its inputs.
func Check(r *models.CustomizationRequest) error {
	want := FromRecord(r)
	if r.UnitCost != want.UnitCost || r.TotalCost != want.TotalCost {
		return fmt.Errorf("%w: stored total %d, expected %d", ErrTotalMismatch, r.TotalCost, want.TotalCost)
	}
	return nil
}
