package request

type InvoiceDefaultsRequest struct {
	Currency string `json:"currency"`
	Method   string `json:"method"`
}

type SuggestionRequest struct {
	Name string `json:"name" binding:"required"`
}
