package request

// ServiceFilterRequest holds the catalog list and export query.
type ServiceFilterRequest struct {
	Status  string `form:"status"`
	Search  string `form:"search"`
	Format  string `form:"format"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// ServiceRequest creates or updates a catalog service.
type ServiceRequest struct {
	Name        string  `json:"service_name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Disabled    bool    `json:"is_disabled"`
}
