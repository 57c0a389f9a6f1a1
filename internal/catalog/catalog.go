// Package catalog holds the printing techniques and materials offered by the
// shop, with their prices in minor currency units.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"custom-print-backend/internal/models"
)

type Technique struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Cost int64  `json:"cost"`
}

type Material struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type Catalog struct {
	Techniques          []Technique `json:"techniques"`
	Materials           []Material  `json:"materials"`
	DefaultProductPrice int64       `json:"default_product_price"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Techniques: []Technique{
			{ID: "dtf-printing", Name: "DTF Printing", Cost: 2510},
			{ID: "screen-printing", Name: "Screen Printing", Cost: 1800},
			{ID: "embroidery", Name: "Embroidery", Cost: 3500},
			{ID: "sublimation", Name: "Sublimation", Cost: 2200},
			{ID: "heat-transfer-vinyl", Name: "Heat Transfer Vinyl", Cost: 1500},
		},
		Materials: []Material{
			{ID: "cotton", Name: "100% Cotton", Price: 4500},
			{ID: "polyester", Name: "Polyester", Price: 3800},
			{ID: "cotton-blend", Name: "Cotton Blend", Price: 4200},
		},
		DefaultProductPrice: 4500,
	}
}

// Load reads a catalog from a JSON file. An empty path yields Default().
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Techniques) == 0 {
		return fmt.Errorf("no techniques defined")
	}
	if c.DefaultProductPrice <= 0 {
		return fmt.Errorf("default_product_price must be positive")
	}
	seen := make(map[string]bool, len(c.Techniques))
	for _, t := range c.Techniques {
		if t.ID == "" || t.Name == "" {
			return fmt.Errorf("technique needs id and name")
		}
		if t.Cost < 0 {
			return fmt.Errorf("technique %s has negative cost", t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate technique %s", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// Technique looks a technique up by id, or by name ignoring case.
func (c *Catalog) Technique(key string) (Technique, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Technique{}, false
	}
	for _, t := range c.Techniques {
		if t.ID == key {
			return t, true
		}
	}
	for _, t := range c.Techniques {
		if strings.EqualFold(t.Name, key) {
			return t, true
		}
	}
	return Technique{}, false
}

// ProductPrice is the base garment price for a material.
func (c *Catalog) ProductPrice(material string) int64 {
	for _, m := range c.Materials {
		if m.ID == material || strings.EqualFold(m.Name, material) {
			return m.Price
		}
	}
	return c.DefaultProductPrice
}

func (c *Catalog) Response() models.CatalogResponse {
	techniques := make([]models.TechniqueResponse, len(c.Techniques))
	for i, t := range c.Techniques {
		techniques[i] = models.TechniqueResponse{ID: t.ID, Name: t.Name, Cost: t.Cost}
	}
	return models.CatalogResponse{
		Techniques:          techniques,
		DefaultProductPrice: c.DefaultProductPrice,
	}
}
