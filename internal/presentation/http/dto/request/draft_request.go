package request

import "time"

// OpenDraftRequest starts an editing session. PatientID is optional.
type OpenDraftRequest struct {
	PatientID   string `json:"patient_id"`
	LockPatient bool   `json:"lock_patient"`
}

// UpdateDraftRequest changes invoice level fields. Omitted fields are kept.
type UpdateDraftRequest struct {
	Currency        *string    `json:"currency"`
	DiscountPercent *float64   `json:"discount_percent"`
	TaxPercent      *float64   `json:"tax_percent"`
	Method          *string    `json:"method"`
	Notes           *string    `json:"notes"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
}

type SelectPatientRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
}

// UpdateItemRequest edits one field of a line item. Value is coerced to
// the field's type.
type UpdateItemRequest struct {
	Field string `json:"field" binding:"required,oneof=name price quantity"`
	Value any    `json:"value"`
}

type SelectServiceRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
}

type ShareDraftRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SearchRequest is the query of the patient and catalog lookups.
type SearchRequest struct {
	Query string `form:"q"`
}
