package service

import (
	"context"
	"sync/atomic"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
)

var testDoctor = entity.DoctorSession{DoctorID: "doc-1", Email: "doc@example.com", Token: "tok"}

type fakeBackend struct {
	listServices   func(ctx context.Context) ([]entity.CatalogService, error)
	createService  func(ctx context.Context, in entity.CatalogServiceInput) (*entity.CatalogService, error)
	updateService  func(ctx context.Context, id string, in entity.CatalogServiceInput) (*entity.CatalogService, error)
	listPatients   func(ctx context.Context) ([]entity.Patient, error)
	createPayment  func(ctx context.Context, payload *entity.PaymentPayload) (*entity.Payment, error)
	getPayment     func(ctx context.Context, id string) (*entity.Payment, error)
	updatePayment  func(ctx context.Context, id string, payload *entity.PaymentUpdatePayload) (*entity.Payment, error)
	deletePayment  func(ctx context.Context, id string) error
	listPayments   func(ctx context.Context, filter entity.PaymentFilter) ([]entity.Payment, error)
	paymentSummary func(ctx context.Context) (*entity.PaymentSummary, error)

	createPaymentCalls int32
}

func (f *fakeBackend) ListServices(ctx context.Context, _ entity.DoctorSession) ([]entity.CatalogService, error) {
	if f.listServices == nil {
		return nil, nil
	}
	return f.listServices(ctx)
}

func (f *fakeBackend) CreateService(ctx context.Context, _ entity.DoctorSession, in entity.CatalogServiceInput) (*entity.CatalogService, error) {
	if f.createService == nil {
		return &entity.CatalogService{ID: "new", Name: in.Name, Price: in.Price, Disabled: in.Disabled}, nil
	}
	return f.createService(ctx, in)
}

func (f *fakeBackend) UpdateService(ctx context.Context, _ entity.DoctorSession, id string, in entity.CatalogServiceInput) (*entity.CatalogService, error) {
	if f.updateService == nil {
		return &entity.CatalogService{ID: id, Name: in.Name, Price: in.Price, Disabled: in.Disabled}, nil
	}
	return f.updateService(ctx, id, in)
}

func (f *fakeBackend) ListPatients(ctx context.Context, _ entity.DoctorSession) ([]entity.Patient, error) {
	if f.listPatients == nil {
		return nil, nil
	}
	return f.listPatients(ctx)
}

func (f *fakeBackend) CreatePayment(ctx context.Context, _ entity.DoctorSession, payload *entity.PaymentPayload) (*entity.Payment, error) {
	atomic.AddInt32(&f.createPaymentCalls, 1)
	if f.createPayment == nil {
		return &entity.Payment{ID: "pay-1", Amount: payload.Amount}, nil
	}
	return f.createPayment(ctx, payload)
}

func (f *fakeBackend) GetPayment(ctx context.Context, _ entity.DoctorSession, id string) (*entity.Payment, error) {
	if f.getPayment == nil {
		return nil, nil
	}
	return f.getPayment(ctx, id)
}

func (f *fakeBackend) UpdatePayment(ctx context.Context, _ entity.DoctorSession, id string, payload *entity.PaymentUpdatePayload) (*entity.Payment, error) {
	if f.updatePayment == nil {
		return nil, nil
	}
	return f.updatePayment(ctx, id, payload)
}

func (f *fakeBackend) DeletePayment(ctx context.Context, _ entity.DoctorSession, id string) error {
	if f.deletePayment == nil {
		return nil
	}
	return f.deletePayment(ctx, id)
}

func (f *fakeBackend) ListPayments(ctx context.Context, _ entity.DoctorSession, filter entity.PaymentFilter) ([]entity.Payment, error) {
	if f.listPayments == nil {
		return nil, nil
	}
	return f.listPayments(ctx, filter)
}

func (f *fakeBackend) PaymentSummary(ctx context.Context, _ entity.DoctorSession) (*entity.PaymentSummary, error) {
	if f.paymentSummary == nil {
		return &entity.PaymentSummary{}, nil
	}
	return f.paymentSummary(ctx)
}

func (f *fakeBackend) paymentCalls() int {
	return int(atomic.LoadInt32(&f.createPaymentCalls))
}

type fakeDefaults struct {
	defaults entity.InvoiceDefaults
	err      error
}

func (f fakeDefaults) GetInvoiceDefaults(context.Context, string) (entity.InvoiceDefaults, error) {
	return f.defaults, f.err
}
