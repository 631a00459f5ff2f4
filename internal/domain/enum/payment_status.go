package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentStatus represents the settlement status of a payment
type PaymentStatus int

const (
	PaymentStatusPending PaymentStatus = 0
	PaymentStatusPaid    PaymentStatus = 1
	PaymentStatusCancel  PaymentStatus = 2
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentStatusPaid:
		return "Paid"
	case PaymentStatusCancel:
		return "Cancel"
	default:
		return "Pending"
	}
}

// ParsePaymentStatus maps a backend label onto a status. ok is false for
// labels the backend does not use, such as the "All" filter option.
func ParsePaymentStatus(label string) (PaymentStatus, bool) {
	switch label {
	case "Paid":
		return PaymentStatusPaid, true
	case "Pending":
		return PaymentStatusPending, true
	case "Cancel":
		return PaymentStatusCancel, true
	}
	return PaymentStatusPending, false
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PaymentStatus(i)
		return nil
	}
	*s, _ = ParsePaymentStatus(str)
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = PaymentStatusPending
	case string:
		*s, _ = ParsePaymentStatus(v)
	case []byte:
		*s, _ = ParsePaymentStatus(string(v))
	case int64:
		*s = PaymentStatus(v)
	}
	return nil
}
