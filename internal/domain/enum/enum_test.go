package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTotalsMode(t *testing.T) {
	tests := []struct {
		in      string
		want    TotalsMode
		wantErr bool
	}{
		{"", TotalsModeLegacy, false},
		{"legacy", TotalsModeLegacy, false},
		{" Corrected ", TotalsModeCorrected, false},
		{"percent", TotalsModeLegacy, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTotalsMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDraftState_JSON(t *testing.T) {
	data, err := json.Marshal(DraftStateSubmitting)
	require.NoError(t, err)
	assert.Equal(t, `"Submitting"`, string(data))

	var s DraftState
	require.NoError(t, json.Unmarshal([]byte(`"Open"`), &s))
	assert.Equal(t, DraftStateOpen, s)
	assert.True(t, s.Editable())
	assert.False(t, DraftStateSubmitting.Editable())
}

func TestPaymentStatus_JSON(t *testing.T) {
	var s PaymentStatus
	require.NoError(t, json.Unmarshal([]byte(`"Paid"`), &s))
	assert.Equal(t, PaymentStatusPaid, s)

	data, err := json.Marshal(PaymentStatusCancel)
	require.NoError(t, err)
	assert.Equal(t, `"Cancel"`, string(data))

	_, ok := ParsePaymentStatus("All")
	assert.False(t, ok)
}
