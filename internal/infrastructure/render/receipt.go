package render

import (
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/pkg/printer"
)

// ReceiptFromRendering composes a printable receipt from a Rendering.
func ReceiptFromRendering(r *entity.Rendering, header entity.ReceiptHeader) *entity.Receipt {
	receipt := &entity.Receipt{
		Header:      header,
		InvoiceNo:   r.Reference,
		Date:        r.IssuedOn,
		PaymentType: r.Method,
		Currency:    r.Currency,
		Items:       make([]entity.ReceiptItem, 0, len(r.Rows)),
		SubTotal:    r.Totals.SubTotal,
		Discount:    r.Totals.Discount,
		Tax:         r.Totals.Tax,
		Total:       r.Totals.GrandTotal,
	}
	if receipt.InvoiceNo == "" {
		receipt.InvoiceNo = "DRAFT"
	}
	if r.Patient != nil {
		receipt.Patient = r.Patient.DisplayName()
	}
	for _, row := range r.Rows {
		name := row.Name
		if name == "" {
			name = "Service"
		}
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      name,
			Quantity:  row.Quantity,
			UnitPrice: row.Price,
			Total:     row.Amount,
		})
	}
	return receipt
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.ClinicName).
		SetFontSize(printer.FontNormal).
		SetBold(false)
	if r.Header.Address != "" {
		doc.Wrap(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-').
		KeyValue("Invoice:", r.InvoiceNo).
		KeyValue("Date:", r.Date)
	if r.Patient != "" {
		doc.KeyValue("Patient:", r.Patient)
	}
	if r.PaymentType != "" {
		doc.KeyValue("Payment:", r.PaymentType)
	}
	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Total)
		if item.Quantity > 1 {
			doc.TextF("  @ %s each", item.UnitPrice)
		}
	}

	doc.Separator('-').
		KeyValue("Subtotal:", r.SubTotal).
		KeyValue("Discount:", r.Discount).
		KeyValue("Tax:", r.Tax).
		SetBold(true).
		KeyValue("TOTAL:", r.Total).
		SetBold(false)
	if r.Currency != "" {
		doc.KeyValue("Currency:", r.Currency)
	}

	doc.Separator('-').
		SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Thank you. Get well soon!").
		LineFeed().
		SetAlign(printer.AlignLeft).
		FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
