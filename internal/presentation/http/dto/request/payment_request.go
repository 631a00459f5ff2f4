package request

// PaymentFilterRequest holds the payment list query.
type PaymentFilterRequest struct {
	PatientName string `form:"patient_name"`
	Status      string `form:"status"`
	Method      string `form:"method"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
	Page        int    `form:"page"`
	PerPage     int    `form:"per_page"`
}

type PaymentServiceRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"gte=0"`
	Quantity int     `json:"quantity" binding:"gte=0"`
}

// UpdatePaymentRequest edits a stored payment. Omitted fields are kept and
// a present services list replaces the stored one.
type UpdatePaymentRequest struct {
	Status   *string                 `json:"status" binding:"omitempty,oneof=Pending Paid Cancel"`
	Notes    *string                 `json:"notes"`
	Method   *string                 `json:"method"`
	Discount *float64                `json:"discount"`
	Tax      *float64                `json:"tax"`
	Services []PaymentServiceRequest `json:"services" binding:"omitempty,dive"`
}
