package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const draftJSON = `{
  "line_items": [
    {"id": "a", "name": "Consultation", "unit_price": 100, "quantity": 2},
    {"id": "b", "name": "Dressing", "unit_price": 50, "quantity": 0}
  ],
  "currency": "INR (₹)",
  "discount_percent": 5,
  "tax_percent": 10,
  "method": "Cash"
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTotalsCommand(t *testing.T) {
	path := writeFile(t, "draft.json", draftJSON)

	t.Run("legacy", func(t *testing.T) {
		out, err := run(t, "totals", path)
		require.NoError(t, err)

		var got totalsOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, []float64{200, 1}, got.Amounts)
		assert.InDelta(t, 201, got.Totals.SubTotal, 1e-9)
		assert.InDelta(t, 20.1, got.Totals.TaxAmount, 1e-9)
		assert.InDelta(t, 5, got.Totals.DiscountAmount, 1e-9)
		assert.InDelta(t, 216.1, got.Totals.GrandTotal, 1e-9)
	})

	t.Run("corrected", func(t *testing.T) {
		out, err := run(t, "totals", "--mode", "corrected", path)
		require.NoError(t, err)

		var got totalsOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, []float64{200, 0}, got.Amounts)
		assert.InDelta(t, 210, got.Totals.GrandTotal, 1e-9)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := run(t, "totals", "--mode", "bogus", path)
		assert.Error(t, err)
	})
}

func TestRenderCommand(t *testing.T) {
	path := writeFile(t, "draft.json", draftJSON)

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "render", path, "--clinic", "Sunrise Clinic")
		require.NoError(t, err)

		var r entity.Rendering
		require.NoError(t, json.Unmarshal([]byte(out), &r))
		assert.Equal(t, "Sunrise Clinic", r.ClinicName)
		assert.Len(t, r.Rows, 2)
	})

	t.Run("pdf to file", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "invoice.pdf")
		_, err := run(t, "render", path, "--format", "pdf", "-o", dst)
		require.NoError(t, err)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	})

	t.Run("receipt", func(t *testing.T) {
		out, err := run(t, "render", path, "--format", "receipt", "--width", "32")
		require.NoError(t, err)
		assert.Contains(t, out, "Consultation")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := run(t, "render", path, "--format", "docx")
		assert.Error(t, err)
	})
}

func TestTokenCommand(t *testing.T) {
	out, err := run(t, "token", "--doctor", "doc-1", "--email", "dr@example.com", "--secret", "s3cret")
	require.NoError(t, err)

	claims, err := utils.NewJWTManager("s3cret", 0).ValidateAccessToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "doc-1", claims.DoctorID)
	assert.Equal(t, "dr@example.com", claims.Email)

	_, err = run(t, "token")
	assert.Error(t, err)
}
