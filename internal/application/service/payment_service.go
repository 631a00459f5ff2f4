package service

import (
	"context"
	"strings"

	"github.com/sangkips/clinic-billing/internal/domain/billing"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/domain/enum"
	"github.com/sangkips/clinic-billing/internal/domain/repository"
	"github.com/sangkips/clinic-billing/internal/infrastructure/render"
	"github.com/sangkips/clinic-billing/pkg/apperror"
	"github.com/sangkips/clinic-billing/pkg/pagination"
	"github.com/sangkips/clinic-billing/pkg/utils"
	"go.uber.org/zap"
)

// PaymentService manages stored payments on the practice backend.
// Edited payments are always totalled with the corrected formula.
type PaymentService struct {
	backend repository.PracticeBackend
	calc    *billing.Calculator
	logger  *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(backend repository.PracticeBackend, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		backend: backend,
		calc:    billing.NewCalculator(enum.TotalsModeCorrected),
		logger:  logger,
	}
}

// Calculator returns the calculator used for stored payments.
func (s *PaymentService) Calculator() *billing.Calculator {
	return s.calc
}

// PaymentLineInput is one edited service row. An empty ID adds a new row.
type PaymentLineInput struct {
	ID       string
	Name     string
	Price    float64
	Quantity int
}

// UpdatePaymentInput carries the editable fields of a payment. Nil fields
// and a nil Services slice are left unchanged.
type UpdatePaymentInput struct {
	Status   *string
	Notes    *string
	Method   *string
	Discount *float64
	Tax      *float64
	Services []PaymentLineInput
}

// ListPayments lists payments matching filter, one page at a time.
func (s *PaymentService) ListPayments(ctx context.Context, sess entity.DoctorSession, filter entity.PaymentFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Payment], error) {
	payments, err := s.fetch(ctx, sess, filter)
	if err != nil {
		return nil, err
	}
	return pagination.Paginate(payments, params), nil
}

func (s *PaymentService) fetch(ctx context.Context, sess entity.DoctorSession, filter entity.PaymentFilter) ([]entity.Payment, error) {
	if filter.Status != "" && !strings.EqualFold(filter.Status, "all") {
		status, ok := enum.ParsePaymentStatus(filter.Status)
		if !ok {
			return nil, apperror.NewBadRequestError("Invalid payment status")
		}
		filter.Status = status.String()
	} else {
		filter.Status = ""
	}
	return s.backend.ListPayments(ctx, sess, filter)
}

// Summary returns the collected totals.
func (s *PaymentService) Summary(ctx context.Context, sess entity.DoctorSession) (*entity.PaymentSummary, error) {
	return s.backend.PaymentSummary(ctx, sess)
}

// GetPayment retrieves a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, sess entity.DoctorSession, id string) (*entity.Payment, error) {
	payment, err := s.backend.GetPayment(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}
	return payment, nil
}

// UpdatePayment applies an edit and sends the recomputed payment.
func (s *PaymentService) UpdatePayment(ctx context.Context, sess entity.DoctorSession, id string, in UpdatePaymentInput) (*entity.Payment, error) {
	payment, err := s.GetPayment(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		status, ok := enum.ParsePaymentStatus(*in.Status)
		if !ok {
			return nil, apperror.NewFieldValidationError([]apperror.FieldError{
				{Field: "status", Message: "Status must be Paid, Pending or Cancel"},
			})
		}
		payment.Status = status
	}
	if in.Notes != nil {
		payment.Notes = *in.Notes
	}
	if in.Method != nil {
		payment.Method = *in.Method
	}
	if in.Discount != nil {
		payment.Discount = *in.Discount
	}
	if in.Tax != nil {
		payment.Tax = *in.Tax
	}
	if in.Services != nil {
		payment.Services = editedLines(in.Services)
	}

	payload := billing.BuildPaymentUpdate(payment, s.calc)
	updated, err := s.backend.UpdatePayment(ctx, sess, id, payload)
	if err != nil {
		s.logger.Warn("payment update failed",
			zap.String("payment_id", id),
			zap.String("error_kind", string(apperror.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}
	if updated == nil {
		payment.Amount = payload.Amount
		payment.Method = payload.Method
		updated = payment
	}

	s.logger.Info("payment updated", zap.String("payment_id", id), zap.Float64("amount", payload.Amount))
	return updated, nil
}

// DeletePayment deletes a payment
func (s *PaymentService) DeletePayment(ctx context.Context, sess entity.DoctorSession, id string) error {
	if err := s.backend.DeletePayment(ctx, sess, id); err != nil {
		return err
	}
	s.logger.Info("payment deleted", zap.String("payment_id", id))
	return nil
}

// ExportPayments renders the filtered payment list as a workbook.
func (s *PaymentService) ExportPayments(ctx context.Context, sess entity.DoctorSession, filter entity.PaymentFilter) ([]byte, error) {
	payments, err := s.fetch(ctx, sess, filter)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, apperror.NewValidationError("No data to export")
	}
	return render.PaymentsXLSX(payments)
}

func editedLines(in []PaymentLineInput) []entity.PaymentLine {
	lines := make([]entity.PaymentLine, 0, len(in))
	for _, l := range in {
		id := l.ID
		if id == "" {
			id = utils.NewTempID()
		}
		lines = append(lines, entity.PaymentLine{
			ID:       id,
			Name:     l.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
			Amount:   l.Price * float64(l.Quantity),
		})
	}
	return lines
}
