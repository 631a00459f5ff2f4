package service

import (
	"context"
	"fmt"

	"github.com/sangkips/clinic-billing/internal/domain/billing"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/infrastructure/render"
	"github.com/sangkips/clinic-billing/pkg/apperror"
	"github.com/sangkips/clinic-billing/pkg/email"
	"go.uber.org/zap"
)

// InvoiceTitle heads every rendered invoice.
const InvoiceTitle = "INVOICE"

// Mailer sends invoice emails.
type Mailer interface {
	Configured() bool
	SendInvoice(mail email.InvoiceMail) error
}

// RenderService produces the read-only views of drafts and payments.
type RenderService struct {
	editor     *EditorService
	payments   *PaymentService
	printer    *PrinterService
	mailer     Mailer
	clinicName string
	logger     *zap.Logger
}

// NewRenderService creates a new render service.
func NewRenderService(
	editor *EditorService,
	payments *PaymentService,
	printer *PrinterService,
	mailer Mailer,
	clinicName string,
	logger *zap.Logger,
) *RenderService {
	return &RenderService{
		editor:     editor,
		payments:   payments,
		printer:    printer,
		mailer:     mailer,
		clinicName: clinicName,
		logger:     logger,
	}
}

// BuildDraftRendering lays out a draft using calc for every figure.
func BuildDraftRendering(d *entity.InvoiceDraft, calc *billing.Calculator, clinicName string) *entity.Rendering {
	totals := calc.Totals(d)
	return &entity.Rendering{
		Title:       InvoiceTitle,
		ClinicName:  clinicName,
		Patient:     d.Patient,
		Currency:    d.Currency,
		Method:      methodOrDefault(d.Method),
		Notes:       d.Notes,
		IssuedOn:    render.Date(&d.StartDate),
		DueOn:       render.Date(&d.EndDate),
		Rows:        renderRows(d.LineItems, calc),
		Totals:      renderTotals(totals),
		TotalsMode:  calc.Mode().String(),
		DiscountPct: d.DiscountPercent,
		TaxPct:      d.TaxPercent,
	}
}

// BuildPaymentRendering lays out a stored payment.
func BuildPaymentRendering(p *entity.Payment, calc *billing.Calculator, clinicName string) *entity.Rendering {
	issued := p.StartDate
	if issued == nil {
		issued = p.CreatedAt
	}
	return &entity.Rendering{
		Title:       InvoiceTitle,
		Reference:   p.ID,
		ClinicName:  clinicName,
		Patient:     p.Patient,
		Currency:    p.Currency,
		Method:      methodOrDefault(p.Method),
		Status:      p.Status.String(),
		Notes:       p.Notes,
		IssuedOn:    render.Date(issued),
		DueOn:       render.Date(p.EndDate),
		Rows:        renderRows(billing.PaymentLineItems(p), calc),
		Totals:      renderTotals(calc.PaymentTotals(p)),
		TotalsMode:  calc.Mode().String(),
		DiscountPct: p.Discount,
		TaxPct:      p.Tax,
	}
}

// DraftPreview renders the current state of a draft.
func (s *RenderService) DraftPreview(doctorID, draftID string) (*entity.Rendering, error) {
	draft, err := s.editor.Snapshot(doctorID, draftID)
	if err != nil {
		return nil, err
	}
	return BuildDraftRendering(draft, s.editor.Calculator(), s.clinicName), nil
}

// DraftPDF renders a draft as a PDF document.
func (s *RenderService) DraftPDF(doctorID, draftID string) ([]byte, error) {
	r, err := s.DraftPreview(doctorID, draftID)
	if err != nil {
		return nil, err
	}
	return render.InvoicePDF(r)
}

// PrintDraft prints the receipt of a draft.
func (s *RenderService) PrintDraft(ctx context.Context, doctorID, draftID string) (*entity.Receipt, error) {
	r, err := s.DraftPreview(doctorID, draftID)
	if err != nil {
		return nil, err
	}
	return s.printer.PrintRendering(ctx, r)
}

// ShareDraft emails the draft PDF to the given address.
func (s *RenderService) ShareDraft(ctx context.Context, doctorID, draftID, to string) error {
	if s.mailer == nil || !s.mailer.Configured() {
		return apperror.NewBadRequestError("Email is not configured")
	}

	r, err := s.DraftPreview(doctorID, draftID)
	if err != nil {
		return err
	}
	if len(r.Rows) == 0 {
		return apperror.NewValidationError("Nothing to share!")
	}

	pdf, err := render.InvoicePDF(r)
	if err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}

	err = s.mailer.SendInvoice(email.InvoiceMail{
		To:         to,
		ClinicName: r.ClinicName,
		Patient:    r.Patient.DisplayName(),
		Total:      r.Totals.GrandTotal,
		Currency:   r.Currency,
		Attachment: email.Attachment{
			Filename:    "invoice.pdf",
			ContentType: "application/pdf",
			Data:        pdf,
		},
	})
	if err != nil {
		s.logger.Warn("invoice share failed", zap.String("draft_id", draftID), zap.Error(err))
		return err
	}
	s.logger.Info("invoice shared", zap.String("draft_id", draftID))
	return nil
}

// PaymentPreview renders a stored payment.
func (s *RenderService) PaymentPreview(ctx context.Context, sess entity.DoctorSession, id string) (*entity.Rendering, error) {
	p, err := s.payments.GetPayment(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return BuildPaymentRendering(p, s.payments.Calculator(), s.clinicName), nil
}

// PaymentPDF renders a stored payment as a PDF document.
func (s *RenderService) PaymentPDF(ctx context.Context, sess entity.DoctorSession, id string) ([]byte, error) {
	r, err := s.PaymentPreview(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return render.InvoicePDF(r)
}

// PrintPayment prints the receipt of a stored payment.
func (s *RenderService) PrintPayment(ctx context.Context, sess entity.DoctorSession, id string) (*entity.Receipt, error) {
	r, err := s.PaymentPreview(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if len(r.Rows) == 0 {
		return nil, apperror.NewValidationError("Nothing to print!")
	}
	return s.printer.PrintRendering(ctx, r)
}

func renderRows(items []entity.LineItem, calc *billing.Calculator) []entity.RenderedRow {
	rows := make([]entity.RenderedRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, entity.RenderedRow{
			Name:     item.Name,
			Price:    render.Money(item.UnitPrice),
			Quantity: item.Quantity,
			Amount:   render.Money(calc.Amount(item)),
		})
	}
	return rows
}

func renderTotals(t billing.Totals) entity.RenderedTotals {
	return entity.RenderedTotals{
		SubTotal:   render.Money(t.SubTotal),
		Discount:   render.Money(t.DiscountAmount),
		Tax:        render.Money(t.TaxAmount),
		GrandTotal: render.Money(t.GrandTotal),
	}
}

func methodOrDefault(method string) string {
	if method == "" {
		return billing.DefaultMethod
	}
	return method
}
