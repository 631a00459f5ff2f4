package repository

import (
	"context"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
)

// PracticeBackend is the external practice API that owns services,
// patients and payments. Every call acts on behalf of the given doctor.
//
// Implementations report transport failures as apperror.KindNetwork and
// failure responses as apperror.KindRejected.
type PracticeBackend interface {
	ListServices(ctx context.Context, sess entity.DoctorSession) ([]entity.CatalogService, error)
	CreateService(ctx context.Context, sess entity.DoctorSession, in entity.CatalogServiceInput) (*entity.CatalogService, error)
	UpdateService(ctx context.Context, sess entity.DoctorSession, id string, in entity.CatalogServiceInput) (*entity.CatalogService, error)

	ListPatients(ctx context.Context, sess entity.DoctorSession) ([]entity.Patient, error)

	CreatePayment(ctx context.Context, sess entity.DoctorSession, payload *entity.PaymentPayload) (*entity.Payment, error)
	GetPayment(ctx context.Context, sess entity.DoctorSession, id string) (*entity.Payment, error)
	// UpdatePayment returns (nil, nil) when the backend acknowledges the
	// update without echoing the record; callers keep their local copy.
	UpdatePayment(ctx context.Context, sess entity.DoctorSession, id string, payload *entity.PaymentUpdatePayload) (*entity.Payment, error)
	DeletePayment(ctx context.Context, sess entity.DoctorSession, id string) error
	ListPayments(ctx context.Context, sess entity.DoctorSession, filter entity.PaymentFilter) ([]entity.Payment, error)
	PaymentSummary(ctx context.Context, sess entity.DoctorSession) (*entity.PaymentSummary, error)
}
