package enum

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TotalsMode selects the invoice arithmetic.
//
// Legacy reproduces the figures doctors already see on existing invoices:
// a zero line total counts as 1 and the discount is subtracted as a flat
// number. Corrected treats the discount as a percentage of the subtotal
// and sums line totals as they are.
type TotalsMode int

const (
	TotalsModeLegacy    TotalsMode = 0
	TotalsModeCorrected TotalsMode = 1
)

func (m TotalsMode) String() string {
	if m == TotalsModeCorrected {
		return "corrected"
	}
	return "legacy"
}

// ParseTotalsMode parses a configured mode name. Empty means legacy.
func ParseTotalsMode(s string) (TotalsMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return TotalsModeLegacy, nil
	case "corrected":
		return TotalsModeCorrected, nil
	}
	return TotalsModeLegacy, fmt.Errorf("unknown totals mode %q", s)
}

func (m TotalsMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *TotalsMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	mode, err := ParseTotalsMode(str)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
