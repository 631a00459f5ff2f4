package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sangkips/clinic-billing/internal/config"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/domain/enum"
	"github.com/sangkips/clinic-billing/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSession = entity.DoctorSession{DoctorID: "doc-1", Token: "tok-123"}

func newTestClient(t *testing.T, handler http.HandlerFunc, cacheTTL time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{
		BaseURL:      srv.URL + "/",
		Timeout:      2 * time.Second,
		CatalogCache: cacheTTL,
	}, zap.NewNop())
}

func TestListServices_BareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/doctor/services", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"_id":"s1","serviceName":"Consultation","price":500,"isDisabled":false,"createdAt":"2024-05-01T10:00:00.000Z"}]`))
	}, 0)

	services, err := client.ListServices(context.Background(), testSession)

	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "s1", services[0].ID)
	assert.Equal(t, "Consultation", services[0].Name)
	assert.Equal(t, 500.0, services[0].Price)
	require.NotNil(t, services[0].CreatedAt)
}

func TestListServices_WrappedAndCached(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"services":[{"_id":"s1","serviceName":"X-Ray","price":900,"isDisabled":true}]}`))
	}, time.Minute)

	first, err := client.ListServices(context.Background(), testSession)
	require.NoError(t, err)
	second, err := client.ListServices(context.Background(), testSession)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, first[0].Disabled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	client.InvalidateServices(testSession.DoctorID)
	_, err = client.ListServices(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestListPatients_NormalizesContacts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/doctor/unique/patients", r.URL.Path)
		w.Write([]byte(`{"patients":[
			{"_id":"p1","fullName":"Asha Rao","email":"asha@example.com","phone":"+91 90000 00001"},
			{"_id":"p2","fullName":"Ravi Kumar","contactDetails":{"email":"ravi@example.com","primaryContact":"+91 90000 00002"}}
		]}`))
	}, 0)

	patients, err := client.ListPatients(context.Background(), testSession)

	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, "asha@example.com", patients[0].Email)
	assert.Equal(t, "ravi@example.com", patients[1].Email)
	assert.Equal(t, "+91 90000 00002", patients[1].Phone)
}

func TestCreatePayment_SendsPayload(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/doctor/payment/create", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"_id":"pay-1","patientId":"p1","amount":270,"status":"Pending","services":[]}}`))
	}, 0)

	payload := &entity.PaymentPayload{
		PatientID: "p1",
		Services:  []entity.PaymentServicePayload{{ServiceID: "s1", Quantity: 2, Price: 100, Name: "Consultation", Amount: 200}},
		Currency:  "INR (₹)",
		Amount:    270,
		Method:    "Cash",
		StartDate: "2026-03-01T00:00:00.000Z",
		EndDate:   "2026-03-08T00:00:00.000Z",
	}

	payment, err := client.CreatePayment(context.Background(), testSession, payload)

	require.NoError(t, err)
	assert.Equal(t, "pay-1", payment.ID)
	assert.Equal(t, "p1", payment.Patient.ID)
	assert.Equal(t, "p1", got["patientId"])
	assert.Equal(t, 270.0, got["amount"])
	assert.Len(t, got["services"], 1)
}

func TestCreatePayment_AckWithoutRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"created"}`))
	}, 0)

	payment, err := client.CreatePayment(context.Background(), testSession, &entity.PaymentPayload{PatientID: "p1", Amount: 10, StartDate: "2026-03-01T00:00:00.000Z"})

	require.NoError(t, err)
	assert.Empty(t, payment.ID)
	assert.Equal(t, 10.0, payment.Amount)
	require.NotNil(t, payment.StartDate)
}

func TestCreatePayment_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    apperror.Kind
		message string
	}{
		{"rejected with message", http.StatusBadRequest, `{"message":"Patient not found"}`, apperror.KindRejected, "Patient not found"},
		{"rejected without message", http.StatusInternalServerError, `oops`, apperror.KindRejected, "Failed to create payment"},
		{"success false", http.StatusOK, `{"success":false,"message":"Duplicate invoice"}`, apperror.KindRejected, "Duplicate invoice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, 0)

			_, err := client.CreatePayment(context.Background(), testSession, &entity.PaymentPayload{})

			require.Error(t, err)
			appErr := apperror.GetAppError(err)
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestCreatePayment_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	client := NewClient(config.BackendConfig{BaseURL: base, Timeout: time.Second}, zap.NewNop())

	_, err := client.CreatePayment(context.Background(), testSession, &entity.PaymentPayload{})

	require.Error(t, err)
	assert.Equal(t, apperror.KindNetwork, apperror.KindOf(err))
}

func TestGetPayment_PopulatedPatient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/doctor/payment/pay-1", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":{
			"_id":"pay-1",
			"patientId":{"_id":"p1","fullName":"Asha Rao","contactDetails":{"primaryContact":"+91 1"}},
			"services":[{"_id":"64b7f0c2a1d3e4f5a6b7c8d9","name":"Consultation","price":500,"quantity":1,"amount":500}],
			"discount":5,"tax":10,"amount":545,"method":"UPI","status":"Paid"
		}}`))
	}, 0)

	payment, err := client.GetPayment(context.Background(), testSession, "pay-1")

	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", payment.Patient.FullName)
	assert.Equal(t, "+91 1", payment.Patient.Phone)
	assert.Equal(t, enum.PaymentStatusPaid, payment.Status)
	require.Len(t, payment.Services, 1)
	assert.Equal(t, "64b7f0c2a1d3e4f5a6b7c8d9", payment.Services[0].ID)
}

func TestGetPayment_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}, 0)

	_, err := client.GetPayment(context.Background(), testSession, "nope")

	require.Error(t, err)
	assert.Equal(t, "Payment not found", err.Error())
}

func TestUpdatePayment_AckWithoutRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/doctor/payment/pay-1", r.URL.Path)
		w.Write([]byte(`{"success":true,"message":"updated"}`))
	}, 0)

	payment, err := client.UpdatePayment(context.Background(), testSession, "pay-1", &entity.PaymentUpdatePayload{Status: "Paid"})

	require.NoError(t, err)
	assert.Nil(t, payment)
}

func TestUpdatePayment_ReturnsRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"_id":"pay-1","amount":99,"status":"Paid"}}`))
	}, 0)

	payment, err := client.UpdatePayment(context.Background(), testSession, "pay-1", &entity.PaymentUpdatePayload{Status: "Paid"})

	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, "pay-1", payment.ID)
	assert.Equal(t, 99.0, payment.Amount)
}

func TestListPayments_Query(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Asha", q.Get("patientName"))
		assert.Equal(t, "Paid", q.Get("status"))
		assert.Equal(t, "2026-03-01T00:00:00.000Z", q.Get("startDate"))
		assert.Empty(t, q.Get("method"))
		w.Write([]byte(`{"data":[{"_id":"pay-1","amount":100,"status":"Paid"},{"_id":"pay-2","amount":50,"status":"Pending"}]}`))
	}, 0)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	payments, err := client.ListPayments(context.Background(), testSession, entity.PaymentFilter{
		PatientName: "Asha",
		Status:      "Paid",
		StartDate:   &start,
	})

	require.NoError(t, err)
	assert.Len(t, payments, 2)
	assert.Equal(t, enum.PaymentStatusPending, payments[1].Status)
}

func TestPaymentSummary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"todayTotal":1200,"monthTotal":34000,"yearTotal":410000}`))
	}, 0)

	summary, err := client.PaymentSummary(context.Background(), testSession)

	require.NoError(t, err)
	assert.Equal(t, &entity.PaymentSummary{TodayTotal: 1200, MonthTotal: 34000, YearTotal: 410000}, summary)
}

func TestUpdateService_InvalidatesCache(t *testing.T) {
	var listCalls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/doctor/services":
			atomic.AddInt32(&listCalls, 1)
			w.Write([]byte(`[]`))
		case "/doctor/services/edit/s1":
			assert.Equal(t, http.MethodPut, r.Method)
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Cleaning", body["serviceName"])
			w.Write([]byte(`{"_id":"s1","serviceName":"Cleaning","price":300}`))
		}
	}, time.Minute)

	_, err := client.ListServices(context.Background(), testSession)
	require.NoError(t, err)

	svc, err := client.UpdateService(context.Background(), testSession, "s1", entity.CatalogServiceInput{Name: "Cleaning", Price: 300})
	require.NoError(t, err)
	assert.Equal(t, "s1", svc.ID)

	_, err = client.ListServices(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&listCalls))
}
