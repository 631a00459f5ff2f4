package billing

import (
	"time"

	"github.com/samber/lo"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/pkg/apperror"
	"github.com/sangkips/clinic-billing/pkg/utils"
)

// isoLayout matches JavaScript's Date.prototype.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z"

// FormatISO renders t as UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ValidateForSubmission checks what must hold before a draft is sent.
func ValidateForSubmission(d *entity.InvoiceDraft) error {
	if d.Patient == nil || d.Patient.ID == "" {
		return apperror.NewValidationError("Please select a patient")
	}

	var fieldErrors []apperror.FieldError
	if d.StartDate.IsZero() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "start_date", Message: "Start date is required"})
	}
	if d.EndDate.IsZero() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "end_date", Message: "End date is required"})
	}
	if !d.StartDate.IsZero() && !d.EndDate.IsZero() && d.EndDate.Before(d.StartDate) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "end_date", Message: "End date must not be before start date"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewFieldValidationError(fieldErrors)
	}
	return nil
}

// BuildPaymentPayload maps a draft onto the payment creation body. Row
// amounts are the raw price times quantity; the payload amount is the
// grand total from calc.
func BuildPaymentPayload(d *entity.InvoiceDraft, calc *Calculator) *entity.PaymentPayload {
	services := lo.Map(d.LineItems, func(item entity.LineItem, _ int) entity.PaymentServicePayload {
		return entity.PaymentServicePayload{
			ServiceID: item.ID,
			Quantity:  item.EffectiveQuantity(),
			Price:     item.UnitPrice,
			Name:      item.Name,
			Amount:    item.UnitPrice * float64(item.Quantity),
		}
	})

	method := d.Method
	if method == "" {
		method = DefaultMethod
	}

	var patientID string
	if d.Patient != nil {
		patientID = d.Patient.ID
	}

	return &entity.PaymentPayload{
		PatientID: patientID,
		Services:  services,
		Currency:  d.Currency,
		Discount:  d.DiscountPercent,
		Tax:       d.TaxPercent,
		Notes:     d.Notes,
		StartDate: FormatISO(d.StartDate),
		EndDate:   FormatISO(d.EndDate),
		Amount:    calc.GrandTotal(d),
		Method:    method,
	}
}

// BuildPaymentUpdate maps an edited payment onto the update body. A row
// keeps its serviceId only when its id is a backend object id.
func BuildPaymentUpdate(p *entity.Payment, calc *Calculator) *entity.PaymentUpdatePayload {
	services := lo.Map(PaymentLineItems(p), func(item entity.LineItem, _ int) entity.PaymentUpdateService {
		svc := entity.PaymentUpdateService{
			Quantity: item.Quantity,
			Name:     item.Name,
			Price:    item.UnitPrice,
		}
		if utils.IsObjectID(item.ID) && !utils.IsTempID(item.ID) {
			svc.ServiceID = item.ID
		}
		return svc
	})

	method := p.Method
	if method == "" {
		method = DefaultMethod
	}

	return &entity.PaymentUpdatePayload{
		Status:   p.Status.String(),
		Notes:    p.Notes,
		Method:   method,
		Discount: p.Discount,
		Tax:      p.Tax,
		Amount:   calc.PaymentTotals(p).GrandTotal,
		Services: services,
	}
}
