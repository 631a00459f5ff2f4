package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRendering() *entity.Rendering {
	return &entity.Rendering{
		Title:      "INVOICE",
		Reference:  "pay-1",
		ClinicName: "Sunrise Dental",
		Patient:    &entity.Patient{ID: "p1", FullName: "Asha Rao", Email: "asha@example.com"},
		Currency:   "INR (₹)",
		Method:     "Cash",
		IssuedOn:   "01 Mar 2026",
		DueOn:      "08 Mar 2026",
		Notes:      "Review in one week",
		Rows: []entity.RenderedRow{
			{Name: "Consultation", Price: "100.00", Quantity: 2, Amount: "200.00"},
			{Name: "X-Ray", Price: "50.00", Quantity: 1, Amount: "50.00"},
		},
		Totals: entity.RenderedTotals{SubTotal: "250.00", Discount: "5.00", Tax: "25.00", GrandTotal: "270.00"},
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "270.00", Money(270))
	assert.Equal(t, "-5.00", Money(-5))
	assert.Equal(t, "0.10", Money(0.1))
	assert.Equal(t, "33.33", Money(100.0/3))
}

func TestDate(t *testing.T) {
	may := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	sep := time.Date(2024, 9, 3, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "01 May 2024", Date(&may))
	assert.Equal(t, "03 Sept 2024", Date(&sep))
	assert.Equal(t, "", Date(nil))
}

func TestServicesCSV(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	services := []entity.CatalogService{
		{ID: "1", Name: `Root "RCT" canal`, Price: 4500, CreatedAt: &created},
		{ID: "2", Name: "", Price: 12.5, Disabled: true, CreatedAt: &created},
	}

	got := string(ServicesCSV(services))

	want := `"Name","Created At","Price (Tsh)","Status"` + "\n" +
		`"Root ""RCT"" canal","01 May 2024","4500","Enabled"` + "\n" +
		`"N/A","01 May 2024","12.5","Disabled"`
	assert.Equal(t, want, got)
}

func TestServicesXLSX(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	data, err := ServicesXLSX([]entity.CatalogService{{Name: "Consultation", Price: 500, CreatedAt: &created}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Services")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Name", "Created At", "Price (Tsh)", "Status"}, rows[0])
	assert.Equal(t, "Consultation", rows[1][0])
	assert.Equal(t, "500", rows[1][2])
	assert.Equal(t, "Enabled", rows[1][3])
}

func TestPaymentsXLSX(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	data, err := PaymentsXLSX([]entity.Payment{{
		ID:        "pay-1",
		Patient:   &entity.Patient{FullName: "Asha Rao"},
		Services:  []entity.PaymentLine{{Name: "Consultation"}},
		Method:    "UPI",
		Status:    enum.PaymentStatusPaid,
		Currency:  "INR (₹)",
		Amount:    270,
		CreatedAt: &created,
	}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Payments")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"01 Mar 2026", "Asha Rao", "1", "UPI", "Paid", "INR (₹)", "270"}, rows[1])
}

func TestInvoicePDF(t *testing.T) {
	data, err := InvoicePDF(sampleRendering())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestReceipt(t *testing.T) {
	receipt := ReceiptFromRendering(sampleRendering(), entity.ReceiptHeader{ClinicName: "Sunrise Dental"})

	assert.Equal(t, "pay-1", receipt.InvoiceNo)
	assert.Equal(t, "Asha Rao", receipt.Patient)
	assert.Equal(t, "270.00", receipt.Total)
	require.Len(t, receipt.Items, 2)
	assert.Equal(t, "200.00", receipt.Items[0].Total)

	data := FormatReceipt(receipt, 32)
	assert.Contains(t, string(data), "Sunrise Dental")
	assert.Contains(t, string(data), "2x Consultation")
	assert.Contains(t, string(data), "270.00")
}
