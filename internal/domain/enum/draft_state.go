package enum

import "encoding/json"

// DraftState is the lifecycle state of an invoice editing session
type DraftState int

const (
	DraftStateClosed     DraftState = 0
	DraftStateOpen       DraftState = 1
	DraftStateSubmitting DraftState = 2
)

func (s DraftState) String() string {
	switch s {
	case DraftStateOpen:
		return "Open"
	case DraftStateSubmitting:
		return "Submitting"
	default:
		return "Closed"
	}
}

// Editable reports whether line items and details may change in this state.
func (s DraftState) Editable() bool {
	return s == DraftStateOpen
}

func (s DraftState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *DraftState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = DraftState(i)
		return nil
	}
	switch str {
	case "Open":
		*s = DraftStateOpen
	case "Submitting":
		*s = DraftStateSubmitting
	default:
		*s = DraftStateClosed
	}
	return nil
}
