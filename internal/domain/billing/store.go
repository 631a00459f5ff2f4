// Package billing holds the invoice editing model: the line item store,
// catalog search, totals arithmetic and the mapping of a draft onto the
// practice backend's payment payloads. Everything here is pure; callers
// own synchronization.
package billing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/pkg/utils"
)

// Editable line item fields.
const (
	FieldName     = "name"
	FieldPrice    = "price"
	FieldQuantity = "quantity"
)

// DefaultMethod is used when a draft carries no payment method.
const DefaultMethod = "Cash"

// DefaultDueDays is the default length of the invoice date range.
const DefaultDueDays = 7

// Upper bounds for edited rows. Larger inputs are capped so the quantity
// stays a valid int and row amounts stay finite.
const (
	MaxQuantity  = math.MaxInt32
	MaxUnitPrice = 1e12
)

var newTempID = utils.NewTempID

// NewLineItem returns a blank row with a fresh temporary id.
func NewLineItem() entity.LineItem {
	return entity.LineItem{ID: newTempID(), Quantity: 1}
}

// NewDraft returns the initial draft: one blank row and a date range of
// today through today plus DefaultDueDays.
func NewDraft(now time.Time, currency, method string) *entity.InvoiceDraft {
	if method == "" {
		method = DefaultMethod
	}
	return &entity.InvoiceDraft{
		LineItems: []entity.LineItem{NewLineItem()},
		Currency:  currency,
		Method:    method,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, DefaultDueDays),
	}
}

// AddBlankItem appends a blank row and returns it.
func AddBlankItem(d *entity.InvoiceDraft) entity.LineItem {
	item := NewLineItem()
	d.LineItems = append(d.LineItems, item)
	return item
}

// UpdateField sets one field of the first row with the given id. Price and
// quantity are coerced to numbers. Editing the name by hand detaches the
// row from the catalog and resets its price. An unknown id or field leaves
// the draft unchanged and returns false.
func UpdateField(d *entity.InvoiceDraft, id, field string, value any) bool {
	i := indexOf(d.LineItems, id)
	if i < 0 {
		return false
	}

	item := &d.LineItems[i]
	switch field {
	case FieldName:
		item.Name = toString(value)
		item.CatalogRef = nil
		item.UnitPrice = 0
	case FieldPrice:
		item.UnitPrice = clamp(toNumber(value), MaxUnitPrice)
	case FieldQuantity:
		item.Quantity = int(clamp(math.Trunc(toNumber(value)), MaxQuantity))
	default:
		return false
	}
	return true
}

// SetFromCatalogSelection replaces the first row with the given id by the
// catalog entry. The row takes the catalog id, so later calls must address
// it by svc.ID. A quantity already set on the row is kept.
func SetFromCatalogSelection(d *entity.InvoiceDraft, id string, svc entity.CatalogService) bool {
	i := indexOf(d.LineItems, id)
	if i < 0 {
		return false
	}

	ref := svc.ID
	d.LineItems[i] = entity.LineItem{
		ID:         svc.ID,
		Name:       svc.Name,
		UnitPrice:  svc.Price,
		Quantity:   d.LineItems[i].EffectiveQuantity(),
		CatalogRef: &ref,
	}
	return true
}

// RemoveItem drops every row with the given id. The draft may end up empty.
func RemoveItem(d *entity.InvoiceDraft, id string) bool {
	kept := lo.Filter(d.LineItems, func(item entity.LineItem, _ int) bool {
		return item.ID != id
	})
	removed := len(kept) != len(d.LineItems)
	d.LineItems = kept
	return removed
}

// FindItem returns the first row with the given id.
func FindItem(d *entity.InvoiceDraft, id string) (entity.LineItem, bool) {
	i := indexOf(d.LineItems, id)
	if i < 0 {
		return entity.LineItem{}, false
	}
	return d.LineItems[i], true
}

func indexOf(items []entity.LineItem, id string) int {
	_, i, ok := lo.FindIndexOf(items, func(item entity.LineItem) bool {
		return item.ID == id
	})
	if !ok {
		return -1
	}
	return i
}

// toNumber follows the UI's numeric coercion, except that anything that
// does not parse becomes 0 rather than NaN.
func clamp(f, upper float64) float64 {
	return math.Min(math.Max(0, f), upper)
}

func toNumber(value any) float64 {
	var f float64
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case interface{ Float64() (float64, error) }:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}
