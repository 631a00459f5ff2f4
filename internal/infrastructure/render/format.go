// Package render turns computed invoices and catalogs into documents:
// PDF, XLSX, CSV and ESC/POS receipts. It never computes totals itself.
package render

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Money formats v with exactly two decimals.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Number formats v the way a plain numeric cell is shown: no trailing zeros.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Date formats t as "02 Jan 2006", using "Sept" for September as the
// en-IN locale does. A nil or zero time renders empty.
func Date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	if t.Month() == time.September {
		return t.Format("02 ") + "Sept" + t.Format(" 2006")
	}
	return t.Format("02 Jan 2006")
}
