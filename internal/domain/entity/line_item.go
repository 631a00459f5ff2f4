package entity

import "time"

// LineItem is one billable row of an invoice draft.
type LineItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	// CatalogRef is set only when the row was filled from the service catalog.
	CatalogRef *string `json:"catalog_ref,omitempty"`
}

// EffectiveQuantity treats an unset quantity as 1.
func (li LineItem) EffectiveQuantity() int {
	if li.Quantity == 0 {
		return 1
	}
	return li.Quantity
}

// InvoiceDraft is the unsaved state of an invoice being composed.
type InvoiceDraft struct {
	LineItems       []LineItem `json:"line_items"`
	Currency        string     `json:"currency"`
	DiscountPercent float64    `json:"discount_percent"`
	TaxPercent      float64    `json:"tax_percent"`
	Patient         *Patient   `json:"patient,omitempty"`
	Method          string     `json:"method"`
	Notes           string     `json:"notes"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
}

// DoctorSession identifies the caller towards the practice backend.
type DoctorSession struct {
	DoctorID string
	Email    string
	Token    string
}
