package service

import (
	"context"
	"fmt"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/infrastructure/render"
	"github.com/sangkips/clinic-billing/pkg/printer"
	"go.uber.org/zap"
)

// PrinterSettings configures receipt printing.
type PrinterSettings struct {
	Type   string
	Width  int
	Header entity.ReceiptHeader
}

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer  printer.Printer
	settings PrinterSettings
	logger   *zap.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, settings PrinterSettings, logger *zap.Logger) *PrinterService {
	return &PrinterService{printer: p, settings: settings, logger: logger}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Width      int    `json:"width"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.settings.Type != "none" && s.settings.Type != "",
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.settings.Type,
		Width:      s.settings.Width,
	}
}

// TestPrint sends a test page to the printer. The receipt is returned
// even when printing fails so it can be shown instead.
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			ClinicName: "PRINTER TEST",
			Address:    s.settings.Header.Address,
			Phone:      s.settings.Header.Phone,
		},
		InvoiceNo: "TEST-001",
		Date:      "Test Date",
		Items: []entity.ReceiptItem{
			{Name: "Test Service 1", Quantity: 1, UnitPrice: "10.00", Total: "10.00"},
			{Name: "Test Service 2", Quantity: 2, UnitPrice: "5.00", Total: "10.00"},
		},
		SubTotal: "20.00",
		Discount: "0.00",
		Tax:      "0.00",
		Total:    "20.00",
	}

	if err := s.printer.Print(ctx, render.FormatReceipt(receipt, s.settings.Width)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// PrintRendering prints the receipt of an already computed invoice.
func (s *PrinterService) PrintRendering(ctx context.Context, r *entity.Rendering) (*entity.Receipt, error) {
	header := s.settings.Header
	if r.ClinicName != "" {
		header.ClinicName = r.ClinicName
	}
	receipt := render.ReceiptFromRendering(r, header)

	if err := s.printer.Print(ctx, render.FormatReceipt(receipt, s.settings.Width)); err != nil {
		s.logger.Warn("printer error", zap.String("invoice_no", receipt.InvoiceNo), zap.Error(err))
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}
