package models

import "time"

type DraftResponse struct {
	ID        string           `json:"draft_id"`
	Form      RequestForm      `json:"form"`
	Artifacts []DesignArtifact `json:"artifacts"`
	Quote     QuoteResponse    `json:"quote"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type QuoteResponse struct {
	FabricCost    int64 `json:"fabric_cost"`
	TechniqueCost int64 `json:"technique_cost"`
	UnitCost      int64 `json:"unit_cost"`
	Quantity      int   `json:"quantity"`
	TotalCost     int64 `json:"total_cost"`
}

type AddDesignResponse struct {
	Added     int              `json:"added"`
	Artifacts []DesignArtifact `json:"artifacts"`
}

type UploadResponse struct {
	DraftID  string         `json:"draft_id"`
	Artifact DesignArtifact `json:"artifact"`
	Added    bool           `json:"added"`
}

type SubmitResponse struct {
	Request   CustomizationRequest `json:"request"`
	Duplicate bool                 `json:"duplicate"`
}

type RequestListResponse struct {
	Requests []CustomizationRequest `json:"requests"`
}

type RequestDetailResponse struct {
	Request     CustomizationRequest `json:"request"`
	DesignFiles []DesignArtifact     `json:"design_files"`
	Cost        CostResponse         `json:"cost"`
	Contact     ContactResponse      `json:"contact"`
}

type CostResponse struct {
	QuoteResponse
	// Consistent is false when the stored total no longer matches
	// (fabric_cost + technique_cost) * quantity.
	Consistent bool `json:"consistent"`
}

type ContactResponse struct {
	PhoneNumber     string `json:"phone_number"`
	WhatsAppNumber  string `json:"whatsapp_number,omitempty"`
	DeliveryAddress string `json:"delivery_address"`
}

type DesignFilesResponse struct {
	RequestID string           `json:"request_id"`
	Files     []DesignArtifact `json:"files"`
}

type TechniqueResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Cost int64  `json:"cost"`
}

type CatalogResponse struct {
	Techniques          []TechniqueResponse `json:"techniques"`
	DefaultProductPrice int64               `json:"default_product_price"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
	// SetupRequired signals a missing collection/table to the admin console.
	SetupRequired bool `json:"setup_required,omitempty"`
}
