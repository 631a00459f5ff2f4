package billing

import (
	"math"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/domain/enum"
)

// Totals are the derived figures of a draft. Values are unrounded.
type Totals struct {
	SubTotal       float64         `json:"sub_total"`
	DiscountAmount float64         `json:"discount_amount"`
	TaxAmount      float64         `json:"tax_amount"`
	GrandTotal     float64         `json:"grand_total"`
	Mode           enum.TotalsMode `json:"mode"`
}

// Calculator computes invoice totals in one TotalsMode. Every view of an
// invoice (editor, preview, print, export) must use the same Calculator.
type Calculator struct {
	mode enum.TotalsMode
}

func NewCalculator(mode enum.TotalsMode) *Calculator {
	return &Calculator{mode: mode}
}

func (c *Calculator) Mode() enum.TotalsMode {
	return c.mode
}

// Amount is the line total of one row. In legacy mode a zero product
// counts as 1.
func (c *Calculator) Amount(item entity.LineItem) float64 {
	product := item.UnitPrice * float64(item.Quantity)
	if c.mode == enum.TotalsModeLegacy && (product == 0 || math.IsNaN(product)) {
		return 1
	}
	return product
}

func (c *Calculator) SubTotal(d *entity.InvoiceDraft) float64 {
	return c.sum(d.LineItems)
}

func (c *Calculator) TaxAmount(d *entity.InvoiceDraft) float64 {
	return c.SubTotal(d) * d.TaxPercent / 100
}

// DiscountAmount is what gets subtracted from the subtotal: the raw
// discount value in legacy mode, a percentage of the subtotal otherwise.
func (c *Calculator) DiscountAmount(d *entity.InvoiceDraft) float64 {
	return c.discount(c.SubTotal(d), d.DiscountPercent)
}

func (c *Calculator) GrandTotal(d *entity.InvoiceDraft) float64 {
	return c.Totals(d).GrandTotal
}

func (c *Calculator) Totals(d *entity.InvoiceDraft) Totals {
	return c.compute(d.LineItems, d.DiscountPercent, d.TaxPercent)
}

// PaymentTotals computes the totals of a stored payment's rows.
func (c *Calculator) PaymentTotals(p *entity.Payment) Totals {
	return c.compute(PaymentLineItems(p), p.Discount, p.Tax)
}

func (c *Calculator) compute(items []entity.LineItem, discountPercent, taxPercent float64) Totals {
	sub := c.sum(items)
	tax := sub * taxPercent / 100
	discount := c.discount(sub, discountPercent)
	return Totals{
		SubTotal:       sub,
		DiscountAmount: discount,
		TaxAmount:      tax,
		GrandTotal:     sub + tax - discount,
		Mode:           c.mode,
	}
}

func (c *Calculator) sum(items []entity.LineItem) float64 {
	var total float64
	for _, item := range items {
		total += c.Amount(item)
	}
	return total
}

func (c *Calculator) discount(subTotal, discountPercent float64) float64 {
	if c.mode == enum.TotalsModeLegacy {
		return discountPercent
	}
	return subTotal * discountPercent / 100
}

// PaymentLineItems converts a stored payment's rows into line items. Rows
// keep their stored id, falling back to the service id.
func PaymentLineItems(p *entity.Payment) []entity.LineItem {
	items := make([]entity.LineItem, 0, len(p.Services))
	for _, line := range p.Services {
		id := line.ID
		if id == "" {
			id = line.ServiceID
		}
		item := entity.LineItem{
			ID:        id,
			Name:      line.Name,
			UnitPrice: line.Price,
			Quantity:  line.Quantity,
		}
		if line.ServiceID != "" {
			ref := line.ServiceID
			item.CatalogRef = &ref
		}
		items = append(items, item)
	}
	return items
}
