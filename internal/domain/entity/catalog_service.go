package entity

import "time"

// CatalogService is a predefined billable service offered by the practice.
type CatalogService struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Description string     `json:"description,omitempty"`
	Disabled    bool       `json:"disabled"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	// IsDefault marks the placeholder entry offered when the practice has
	// no services configured yet.
	IsDefault bool `json:"is_default,omitempty"`
}

// DefaultCatalogServiceID identifies the placeholder consultation entry.
const DefaultCatalogServiceID = "default-consultation"

// DefaultCatalogService is listed when the catalog is empty or unavailable.
// It stays disabled until the doctor saves it as a real service.
func DefaultCatalogService(now time.Time) CatalogService {
	return CatalogService{
		ID:        DefaultCatalogServiceID,
		Name:      "Consultation",
		Price:     500,
		Disabled:  true,
		CreatedAt: &now,
		IsDefault: true,
	}
}

// CatalogServiceInput carries the editable fields of a catalog service.
type CatalogServiceInput struct {
	Name        string  `json:"serviceName"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Disabled    bool    `json:"isDisabled"`
}
