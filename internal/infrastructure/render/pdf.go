package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
)

// InvoicePDF renders an A4 invoice from a Rendering.
func InvoicePDF(r *entity.Rendering) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(contentW/2, 10, tr(r.ClinicName), "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(contentW/2, 10, tr(r.Title), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	if r.Reference != "" {
		pdf.CellFormat(contentW, 6, tr("Reference: "+r.Reference), "", 1, "R", false, 0, "")
	}
	pdf.CellFormat(contentW, 6, tr("Date: "+r.IssuedOn), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW, 6, tr("Due: "+r.DueOn), "", 1, "R", false, 0, "")
	if r.Status != "" {
		pdf.CellFormat(contentW, 6, tr("Status: "+r.Status), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Bill to
	if r.Patient != nil {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(contentW, 7, "Bill To", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(contentW, 6, tr(r.Patient.DisplayName()), "", 1, "L", false, 0, "")
		if r.Patient.Email != "" {
			pdf.CellFormat(contentW, 6, tr(r.Patient.Email), "", 1, "L", false, 0, "")
		}
		if r.Patient.Phone != "" {
			pdf.CellFormat(contentW, 6, tr(r.Patient.Phone), "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	// Items
	cols := []float64{contentW * 0.46, contentW * 0.18, contentW * 0.12, contentW * 0.24}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(235, 240, 245)
	for i, h := range []string{"Item", "Price", "Qty", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range r.Rows {
		pdf.CellFormat(cols[0], 7, tr(row.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 7, row.Price, "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 7, fmt.Sprintf("%d", row.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, row.Amount, "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals
	labelW := cols[0] + cols[1] + cols[2]
	totals := []struct{ label, value string }{
		{"Sub Total:", r.Totals.SubTotal},
		{"Discount:", r.Totals.Discount},
		{"Tax:", r.Totals.Tax},
	}
	for _, t := range totals {
		pdf.CellFormat(labelW, 6, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 6, t.value, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(labelW, 8, tr("Grand Total ("+r.Currency+"):"), "", 0, "R", false, 0, "")
	pdf.CellFormat(cols[3], 8, r.Totals.GrandTotal, "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.Ln(4)
	pdf.CellFormat(contentW, 6, tr("Payment method: "+r.Method), "", 1, "L", false, 0, "")
	if r.Notes != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(contentW, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(contentW, 5, tr(r.Notes), "", "L", false)
	}

	if pdf.Err() {
		return nil, fmt.Errorf("render pdf: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
