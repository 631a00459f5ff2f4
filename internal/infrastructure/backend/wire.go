package backend

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/sangkips/clinic-billing/internal/domain/billing"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/domain/enum"
)

// envelope is the common response wrapper of the practice backend.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Payment json.RawMessage `json:"payment"`
}

type serviceDTO struct {
	ID          string     `json:"_id"`
	ServiceName string     `json:"serviceName"`
	Price       float64    `json:"price"`
	Description string     `json:"description"`
	IsDisabled  bool       `json:"isDisabled"`
	CreatedAt   *time.Time `json:"createdAt"`
}

func (s serviceDTO) toEntity() entity.CatalogService {
	return entity.CatalogService{
		ID:          s.ID,
		Name:        s.ServiceName,
		Price:       s.Price,
		Description: s.Description,
		Disabled:    s.IsDisabled,
		CreatedAt:   s.CreatedAt,
	}
}

type servicesDTO struct {
	Services []serviceDTO `json:"services"`
}

type contactDetailsDTO struct {
	Email          string `json:"email"`
	PrimaryContact string `json:"primaryContact"`
}

type patientDTO struct {
	ID             string             `json:"_id"`
	FullName       string             `json:"fullName"`
	Email          string             `json:"email"`
	Phone          string             `json:"phone"`
	Image          string             `json:"image"`
	ContactDetails *contactDetailsDTO `json:"contactDetails"`
}

// toEntity resolves the contact fields once: top-level values win over
// the nested contact details.
func (p patientDTO) toEntity() entity.Patient {
	out := entity.Patient{
		ID:       p.ID,
		FullName: p.FullName,
		Email:    p.Email,
		Phone:    p.Phone,
		Image:    p.Image,
	}
	if p.ContactDetails != nil {
		if out.Email == "" {
			out.Email = p.ContactDetails.Email
		}
		if out.Phone == "" {
			out.Phone = p.ContactDetails.PrimaryContact
		}
	}
	return out
}

type patientsDTO struct {
	Patients []patientDTO `json:"patients"`
}

type paymentLineDTO struct {
	ID        string  `json:"_id"`
	ServiceID string  `json:"serviceId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Amount    float64 `json:"amount"`
}

type paymentDTO struct {
	ID        string           `json:"_id"`
	PatientID json.RawMessage  `json:"patientId"`
	Services  []paymentLineDTO `json:"services"`
	Currency  string           `json:"currency"`
	Discount  float64          `json:"discount"`
	Tax       float64          `json:"tax"`
	Notes     string           `json:"notes"`
	StartDate *time.Time       `json:"startDate"`
	EndDate   *time.Time       `json:"endDate"`
	Amount    float64          `json:"amount"`
	Method    string           `json:"method"`
	Status    string           `json:"status"`
	CreatedAt *time.Time       `json:"createdAt"`
}

func (p paymentDTO) toEntity() entity.Payment {
	status, _ := enum.ParsePaymentStatus(p.Status)
	out := entity.Payment{
		ID:        p.ID,
		Patient:   decodePatientRef(p.PatientID),
		Services:  make([]entity.PaymentLine, 0, len(p.Services)),
		Currency:  p.Currency,
		Discount:  p.Discount,
		Tax:       p.Tax,
		Notes:     p.Notes,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Amount:    p.Amount,
		Method:    p.Method,
		Status:    status,
		CreatedAt: p.CreatedAt,
	}
	for _, line := range p.Services {
		out.Services = append(out.Services, entity.PaymentLine{
			ID:        line.ID,
			ServiceID: line.ServiceID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Amount:    line.Amount,
		})
	}
	return out
}

// decodePatientRef accepts either a bare id or a populated patient object.
func decodePatientRef(raw json.RawMessage) *entity.Patient {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil || id == "" {
			return nil
		}
		return &entity.Patient{ID: id}
	}
	var dto patientDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil
	}
	patient := dto.toEntity()
	return &patient
}

type paymentListDTO struct {
	Data []paymentDTO `json:"data"`
}

type summaryDTO struct {
	Success    *bool   `json:"success"`
	TodayTotal float64 `json:"todayTotal"`
	MonthTotal float64 `json:"monthTotal"`
	YearTotal  float64 `json:"yearTotal"`
}

// paymentFromPayload stands in for the created payment when the backend
// acknowledges creation without echoing the record.
func paymentFromPayload(p *entity.PaymentPayload) *entity.Payment {
	out := &entity.Payment{
		Currency: p.Currency,
		Discount: p.Discount,
		Tax:      p.Tax,
		Notes:    p.Notes,
		Amount:   p.Amount,
		Method:   p.Method,
		Services: make([]entity.PaymentLine, 0, len(p.Services)),
	}
	if p.PatientID != "" {
		out.Patient = &entity.Patient{ID: p.PatientID}
	}
	for _, svc := range p.Services {
		out.Services = append(out.Services, entity.PaymentLine{
			ServiceID: svc.ServiceID,
			Name:      svc.Name,
			Price:     svc.Price,
			Quantity:  svc.Quantity,
			Amount:    svc.Amount,
		})
	}
	if t, err := time.Parse(time.RFC3339, p.StartDate); err == nil {
		out.StartDate = &t
	}
	if t, err := time.Parse(time.RFC3339, p.EndDate); err == nil {
		out.EndDate = &t
	}
	return out
}

// paymentQueryTime formats filter dates the way the payments screen does.
func paymentQueryTime(t time.Time) string {
	return billing.FormatISO(t)
}
