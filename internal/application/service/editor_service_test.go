package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sangkips/clinic-billing/internal/domain/billing"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/domain/enum"
	"github.com/sangkips/clinic-billing/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestEditor(backend *fakeBackend, mode enum.TotalsMode) *EditorService {
	svc := NewEditorService(
		backend,
		fakeDefaults{defaults: entity.InvoiceDefaults{Currency: "USD ($)", Method: "UPI"}},
		billing.NewCalculator(mode),
		EditorConfig{Defaults: entity.InvoiceDefaults{Currency: "INR (₹)", Method: "Cash"}, TTL: time.Hour},
		zap.NewNop(),
	)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func catalogBackend() *fakeBackend {
	return &fakeBackend{
		listServices: func(context.Context) ([]entity.CatalogService, error) {
			return []entity.CatalogService{
				{ID: "507f1f77bcf86cd799439011", Name: "Consultation", Price: 100},
				{ID: "507f1f77bcf86cd799439012", Name: "X-Ray", Price: 50},
				{ID: "507f1f77bcf86cd799439013", Name: "Old X-Ray", Price: 40, Disabled: true},
			}, nil
		},
		listPatients: func(context.Context) ([]entity.Patient, error) {
			return []entity.Patient{
				{ID: "p1", FullName: "Asha Rao", Email: "asha@example.com"},
				{ID: "p2", FullName: "Ravi Kumar"},
			}, nil
		},
	}
}

func openDraft(t *testing.T, svc *EditorService, in OpenInput) *DraftView {
	t.Helper()
	view, err := svc.Open(context.Background(), testDoctor, in)
	require.NoError(t, err)
	return view
}

func TestEditor_OpenDefaultDraft(t *testing.T) {
	svc := newTestEditor(catalogBackend(), enum.TotalsModeLegacy)

	view := openDraft(t, svc, OpenInput{})

	assert.Equal(t, enum.DraftStateOpen, view.State)
	require.Len(t, view.Draft.LineItems, 1)
	assert.Contains(t, view.Draft.LineItems[0].ID, "temp_")
	assert.Equal(t, 1, view.Draft.LineItems[0].Quantity)
	assert.Equal(t, "USD ($)", view.Draft.Currency)
	assert.Equal(t, "UPI", view.Draft.Method)
	assert.Equal(t, fixedNow, view.Draft.StartDate)
	assert.Equal(t, fixedNow.AddDate(0, 0, 7), view.Draft.EndDate)
	assert.Equal(t, 1, svc.Active())
}

func TestEditor_OpenFallsBackToConfiguredDefaults(t *testing.T) {
	svc := newTestEditor(catalogBackend(), enum.TotalsModeLegacy)
	svc.prefs = fakeDefaults{err: errors.New("db down")}

	view := openDraft(t, svc, OpenInput{})

	assert.Equal(t, "INR (₹)", view.Draft.Currency)
	assert.Equal(t, "Cash", view.Draft.Method)
}

func TestEditor_EditFlow(t *testing.T) {
	svc := newTestEditor(catalogBackend(), enum.TotalsModeLegacy)
	ctx := context.Background()
	view := openDraft(t, svc, OpenInput{})
	first := view.Draft.LineItems[0].ID

	view, err := svc.SelectCatalogService(ctx, "doc-1", view.ID, first, "507f1f77bcf86cd799439011")
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", view.Draft.LineItems[0].ID)
	assert.Equal(t, 100.0, view.Draft.LineItems[0].UnitPrice)

	view, err = svc.UpdateItemField("doc-1", view.ID, "507f1f77bcf86cd799439011", billing.FieldQuantity, "2")
	require.NoError(t, err)

	view, second, err := svc.AddItem("doc-1", view.ID)
	require.NoError(t, err)
	view, err = svc.SelectCatalogService(ctx, "doc-1", view.ID, second.ID, "507f1f77bcf86cd799439012")
	require.NoError(t, err)

	discount, tax := 5.0, 10.0
	view, err = svc.UpdateDetails("doc-1", view.ID, DetailsInput{DiscountPercent: &discount, TaxPercent: &tax})
	require.NoError(t, err)

	assert.Equal(t, []float64{200, 50}, view.Amounts)
	assert.Equal(t, 250.0, view.Totals.SubTotal)
	assert.Equal(t, 25.0, view.Totals.TaxAmount)
	assert.Equal(t, 270.0, view.Totals.GrandTotal)

	view, err = svc.RemoveItem("doc-1", view.ID, "507f1f77bcf86cd799439012")
	require.NoError(t, err)
	assert.Len(t, view.Draft.LineItems, 1)

	view, err = svc.UpdateItemField("doc-1", view.ID, "missing", billing.FieldPrice, 10)
	require.NoError(t, err)
	assert.Len(t, view.Draft.LineItems, 1)
}

func TestEditor_SelectDisabledServiceRejected(t *testing.T) {
	svc := newTestEditor(catalogBackend(), enum.TotalsModeLegacy)
	view := openDraft(t, svc, OpenInput{})

	_, err := svc.SelectCatalogService(context.Background(), "doc-1", view.ID, view.Draft.LineItems[0].ID, "507f1f77bcf86cd799439013")

	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestEditor_Search(t *testing.T) {
	svc := newTestEditor(catalogBackend(), enum.TotalsModeLegacy)
	ctx := context.Background()
	view := openDraft(t, svc, OpenInput{})

	services, err := svc.SearchCatalog(ctx, "doc-1", view.ID, "x-ray")
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "X-Ray", services[0].Name)

	services, err = svc.SearchCatalog(ctx, "doc-1", view.ID, "")
	require.NoError(t, err)
	assert.Empty(t, services)

	patients, err := svc.SearchPatients(ctx, "doc-1", view.ID, "ASHA")
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "p1", patients[0].ID)
}

func TestEditor_OtherDoctorCannotSeeDraft(t *testing.T) {
	svc := newTestEditor(catalogBackend(), enum.TotalsModeLegacy)
	view := openDraft(t, svc, OpenInput{})

	_, err := svc.Get("doc-2", view.ID)

	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestEditor_LockedPatient(t *testing.T) {
	svc := newTestEditor(catalogBackend(), enum.TotalsModeLegacy)
	ctx := context.Background()
	view := openDraft(t, svc, OpenInput{PatientID: "p1", LockPatient: true})

	_, err := svc.SelectPatient(ctx, "doc-1", view.ID, "p2")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	view, err = svc.Get("doc-1", view.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Draft.Patient)
	assert.Equal(t, "p1", view.Draft.Patient.ID)
	assert.True(t, view.LockedPatient)
}

func TestEditor_SelectPatientResolvesRecord(t *testing.T) {
	svc := newTestEditor(catalogBackend(), enum.TotalsModeLegacy)
	view := openDraft(t, svc, OpenInput{})

	view, err := svc.SelectPatient(context.Background(), "doc-1", view.ID, "p1")

	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", view.Draft.Patient.FullName)
}

func TestEditor_SubmitWithoutPatientNeverCallsBackend(t *testing.T) {
	backend := catalogBackend()
	svc := newTestEditor(backend, enum.TotalsModeLegacy)
	view := openDraft(t, svc, OpenInput{})

	_, err := svc.Submit(context.Background(), testDoctor, view.ID)

	require.Error(t, err)
	assert.Equal(t, "Please select a patient", err.Error())
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, 0, backend.paymentCalls())

	view, err = svc.Get("doc-1", view.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.DraftStateOpen, view.State)
	assert.Equal(t, "Please select a patient", view.LastError)
}

func TestEditor_SubmitSuccessClosesSession(t *testing.T) {
	backend := catalogBackend()
	var sent *entity.PaymentPayload
	backend.createPayment = func(_ context.Context, payload *entity.PaymentPayload) (*entity.Payment, error) {
		sent = payload
		return &entity.Payment{ID: "pay-9", Amount: payload.Amount}, nil
	}
	svc := newTestEditor(backend, enum.TotalsModeLegacy)

	var hooked *entity.InvoiceDraft
	svc.OnSubmit(func(_ context.Context, _ entity.DoctorSession, d *entity.InvoiceDraft, p *entity.Payment) {
		hooked = d
	})

	view := openDraft(t, svc, OpenInput{PatientID: "p1"})
	_, err := svc.UpdateItemField("doc-1", view.ID, view.Draft.LineItems[0].ID, billing.FieldName, "Dressing")
	require.NoError(t, err)
	_, err = svc.UpdateItemField("doc-1", view.ID, view.Draft.LineItems[0].ID, billing.FieldPrice, 120)
	require.NoError(t, err)

	payment, err := svc.Submit(context.Background(), testDoctor, view.ID)

	require.NoError(t, err)
	assert.Equal(t, "pay-9", payment.ID)
	require.NotNil(t, sent)
	assert.Equal(t, "p1", sent.PatientID)
	assert.Equal(t, 120.0, sent.Amount)
	assert.Equal(t, "2026-03-01T09:30:00.000Z", sent.StartDate)
	require.NotNil(t, hooked)
	assert.Equal(t, "Dressing", hooked.LineItems[0].Name)

	_, err = svc.Get("doc-1", view.ID)
	assert.Error(t, err)
	assert.Equal(t, 0, svc.Active())
}

func TestEditor_SubmitFailureKeepsDraft(t *testing.T) {
	backend := catalogBackend()
	backend.createPayment = func(context.Context, *entity.PaymentPayload) (*entity.Payment, error) {
		return nil, apperror.NewRejectedError(http.StatusBadRequest, "Patient not found")
	}
	svc := newTestEditor(backend, enum.TotalsModeLegacy)
	view := openDraft(t, svc, OpenInput{PatientID: "p1"})

	_, err := svc.Submit(context.Background(), testDoctor, view.ID)

	assert.Equal(t, apperror.KindRejected, apperror.KindOf(err))
	view, err = svc.Get("doc-1", view.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.DraftStateOpen, view.State)
	assert.Equal(t, "Patient not found", view.LastError)
	assert.Len(t, view.Draft.LineItems, 1)
}

func TestEditor_SecondSubmitRejectedWhileInFlight(t *testing.T) {
	backend := catalogBackend()
	started := make(chan struct{})
	release := make(chan struct{})
	backend.createPayment = func(context.Context, *entity.PaymentPayload) (*entity.Payment, error) {
		close(started)
		<-release
		return &entity.Payment{ID: "pay-1"}, nil
	}
	svc := newTestEditor(backend, enum.TotalsModeLegacy)
	view := openDraft(t, svc, OpenInput{PatientID: "p1"})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), testDoctor, view.ID)
		done <- err
	}()
	<-started

	_, err := svc.Submit(context.Background(), testDoctor, view.ID)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	_, _, err = svc.AddItem("doc-1", view.ID)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, backend.paymentCalls())
}

func TestEditor_SubmitAfterCloseNeverReachesBackend(t *testing.T) {
	backend := catalogBackend()
	svc := newTestEditor(backend, enum.TotalsModeLegacy)
	view := openDraft(t, svc, OpenInput{PatientID: "p1"})

	require.NoError(t, svc.Close("doc-1", view.ID))
	_, err := svc.Submit(context.Background(), testDoctor, view.ID)

	assert.Error(t, err)
	assert.Equal(t, 0, backend.paymentCalls())
}

func TestEditor_CloseDuringSubmitDropsResult(t *testing.T) {
	backend := catalogBackend()
	started := make(chan struct{})
	backend.createPayment = func(ctx context.Context, _ *entity.PaymentPayload) (*entity.Payment, error) {
		close(started)
		<-ctx.Done()
		return nil, apperror.NewNetworkError("request canceled", ctx.Err())
	}
	svc := newTestEditor(backend, enum.TotalsModeLegacy)
	hookCalled := false
	svc.OnSubmit(func(context.Context, entity.DoctorSession, *entity.InvoiceDraft, *entity.Payment) {
		hookCalled = true
	})
	view := openDraft(t, svc, OpenInput{PatientID: "p1"})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), testDoctor, view.ID)
		done <- err
	}()
	<-started
	require.NoError(t, svc.Close("doc-1", view.ID))

	err := <-done
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)
	assert.False(t, hookCalled)
}

func TestEditor_LateCatalogResultDropped(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		listServices: func(context.Context) ([]entity.CatalogService, error) {
			<-release
			return []entity.CatalogService{{ID: "s1", Name: "Late"}}, nil
		},
	}
	svc := newTestEditor(backend, enum.TotalsModeLegacy)
	view := openDraft(t, svc, OpenInput{})
	assert.True(t, view.Loading)

	svc.mu.RLock()
	es := svc.sessions[view.ID]
	svc.mu.RUnlock()

	require.NoError(t, svc.Close("doc-1", view.ID))
	close(release)
	<-es.loaded

	es.mu.Lock()
	defer es.mu.Unlock()
	assert.Nil(t, es.catalog)
	assert.Equal(t, enum.DraftStateClosed, es.state)
}

func TestEditor_CleanupExpiresIdleSessions(t *testing.T) {
	svc := newTestEditor(catalogBackend(), enum.TotalsModeLegacy)
	openDraft(t, svc, OpenInput{})

	assert.Equal(t, 0, svc.cleanup())

	svc.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	assert.Equal(t, 1, svc.cleanup())
	assert.Equal(t, 0, svc.Active())
}
