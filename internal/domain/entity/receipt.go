package entity

// ReceiptHeader holds the clinic header printed at the top of a receipt.
type ReceiptHeader struct {
	ClinicName string `json:"clinic_name"`
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// ReceiptItem represents a single service line on a receipt.
type ReceiptItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// Receipt is a value object composed from a Rendering at print time.
type Receipt struct {
	Header      ReceiptHeader `json:"header"`
	InvoiceNo   string        `json:"invoice_no"`
	Date        string        `json:"date"`
	Patient     string        `json:"patient,omitempty"`
	PaymentType string        `json:"payment_type,omitempty"`
	Currency    string        `json:"currency"`
	Items       []ReceiptItem `json:"items"`
	SubTotal    string        `json:"sub_total"`
	Discount    string        `json:"discount"`
	Tax         string        `json:"tax"`
	Total       string        `json:"total"`
}
