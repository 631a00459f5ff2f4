package entity

// Rendering is the read-only view of an invoice: every figure is already
// computed and formatted so that preview, PDF and receipt agree.
type Rendering struct {
	Title       string         `json:"title"`
	Reference   string         `json:"reference,omitempty"`
	ClinicName  string         `json:"clinic_name"`
	Patient     *Patient       `json:"patient,omitempty"`
	Currency    string         `json:"currency"`
	Method      string         `json:"method"`
	Status      string         `json:"status,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	IssuedOn    string         `json:"issued_on"`
	DueOn       string         `json:"due_on"`
	Rows        []RenderedRow  `json:"rows"`
	Totals      RenderedTotals `json:"totals"`
	TotalsMode  string         `json:"totals_mode"`
	DiscountPct float64        `json:"discount_percent"`
	TaxPct      float64        `json:"tax_percent"`
}

type RenderedRow struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Amount   string `json:"amount"`
}

type RenderedTotals struct {
	SubTotal   string `json:"sub_total"`
	Discount   string `json:"discount"`
	Tax        string `json:"tax"`
	GrandTotal string `json:"grand_total"`
}
