package entity

// Patient is the normalized patient record. Contact fields are resolved
// once when the record is fetched from the practice backend.
type Patient struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Image    string `json:"image,omitempty"`
}

// DisplayName falls back to the id when the backend sent no name.
func (p *Patient) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.FullName != "" {
		return p.FullName
	}
	return p.ID
}
