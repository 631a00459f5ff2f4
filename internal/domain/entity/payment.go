package entity

import (
	"time"

	"github.com/sangkips/clinic-billing/internal/domain/enum"
)

// Payment is a stored invoice/payment as returned by the practice backend.
type Payment struct {
	ID        string             `json:"id"`
	Patient   *Patient           `json:"patient,omitempty"`
	Services  []PaymentLine      `json:"services"`
	Currency  string             `json:"currency"`
	Discount  float64            `json:"discount"`
	Tax       float64            `json:"tax"`
	Notes     string             `json:"notes"`
	StartDate *time.Time         `json:"start_date,omitempty"`
	EndDate   *time.Time         `json:"end_date,omitempty"`
	Amount    float64            `json:"amount"`
	Method    string             `json:"method"`
	Status    enum.PaymentStatus `json:"status"`
	CreatedAt *time.Time         `json:"created_at,omitempty"`
}

// PaymentLine is one service row of a stored payment.
type PaymentLine struct {
	ID        string  `json:"id"`
	ServiceID string  `json:"service_id,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Amount    float64 `json:"amount"`
}

// PaymentPayload is the body of POST /doctor/payment/create.
type PaymentPayload struct {
	PatientID string                  `json:"patientId"`
	Services  []PaymentServicePayload `json:"services"`
	Currency  string                  `json:"currency"`
	Discount  float64                 `json:"discount"`
	Tax       float64                 `json:"tax"`
	Notes     string                  `json:"notes"`
	StartDate string                  `json:"startDate"`
	EndDate   string                  `json:"endDate"`
	Amount    float64                 `json:"amount"`
	Method    string                  `json:"method"`
}

type PaymentServicePayload struct {
	ServiceID string  `json:"serviceId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
}

// PaymentUpdatePayload is the body of PUT /doctor/payment/:id.
type PaymentUpdatePayload struct {
	Status   string                 `json:"status"`
	Notes    string                 `json:"notes"`
	Method   string                 `json:"method"`
	Discount float64                `json:"discount"`
	Tax      float64                `json:"tax"`
	Amount   float64                `json:"amount"`
	Services []PaymentUpdateService `json:"services"`
}

type PaymentUpdateService struct {
	Quantity  int     `json:"quantity"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ServiceID string  `json:"serviceId,omitempty"`
}

// PaymentFilter narrows the payment list. Zero values are not sent.
type PaymentFilter struct {
	PatientName string
	Status      string
	Method      string
	StartDate   *time.Time
	EndDate     *time.Time
}

// PaymentSummary holds the collected totals for the dashboard boxes.
type PaymentSummary struct {
	TodayTotal float64 `json:"today_total"`
	MonthTotal float64 `json:"month_total"`
	YearTotal  float64 `json:"year_total"`
}
