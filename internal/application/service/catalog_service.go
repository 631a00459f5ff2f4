package service

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/domain/repository"
	"github.com/sangkips/clinic-billing/internal/infrastructure/render"
	"github.com/sangkips/clinic-billing/pkg/apperror"
	"github.com/sangkips/clinic-billing/pkg/pagination"
	"go.uber.org/zap"
)

// Catalog status filters.
const (
	CatalogStatusAll      = "all"
	CatalogStatusEnabled  = "enabled"
	CatalogStatusDisabled = "disabled"
)

// Export formats.
const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
)

// CatalogFilter narrows the service list.
type CatalogFilter struct {
	Status string
	Search string
}

// Export is a rendered export file.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CatalogService manages the doctor's billable services.
type CatalogService struct {
	backend repository.PracticeBackend
	logger  *zap.Logger
	now     func() time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(backend repository.PracticeBackend, logger *zap.Logger) *CatalogService {
	return &CatalogService{backend: backend, logger: logger, now: time.Now}
}

// ListServices lists services matching filter. An empty or unavailable
// catalog lists the default consultation entry instead.
func (s *CatalogService) ListServices(ctx context.Context, sess entity.DoctorSession, filter CatalogFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.CatalogService], error) {
	services, err := s.filtered(ctx, sess, filter)
	if err != nil {
		return nil, err
	}
	return pagination.Paginate(services, params), nil
}

// CreateService creates a new service
func (s *CatalogService) CreateService(ctx context.Context, sess entity.DoctorSession, in entity.CatalogServiceInput) (*entity.CatalogService, error) {
	in, err := validateServiceInput(in)
	if err != nil {
		return nil, err
	}

	svc, err := s.backend.CreateService(ctx, sess, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("service created", zap.String("doctor_id", sess.DoctorID), zap.String("service_id", svc.ID))
	return svc, nil
}

// UpdateService updates a service. Saving the default entry creates it.
func (s *CatalogService) UpdateService(ctx context.Context, sess entity.DoctorSession, id string, in entity.CatalogServiceInput) (*entity.CatalogService, error) {
	if id == entity.DefaultCatalogServiceID {
		return s.CreateService(ctx, sess, in)
	}

	in, err := validateServiceInput(in)
	if err != nil {
		return nil, err
	}

	svc, err := s.backend.UpdateService(ctx, sess, id, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("service updated", zap.String("doctor_id", sess.DoctorID), zap.String("service_id", id))
	return svc, nil
}

// ExportServices renders the filtered list as CSV or XLSX.
func (s *CatalogService) ExportServices(ctx context.Context, sess entity.DoctorSession, filter CatalogFilter, format string) (*Export, error) {
	services, err := s.filtered(ctx, sess, filter)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return nil, apperror.NewValidationError("No data to export")
	}

	switch strings.ToLower(format) {
	case "", ExportCSV:
		return &Export{
			Filename:    "services.csv",
			ContentType: "text/csv;charset=utf-8;",
			Data:        render.ServicesCSV(services),
		}, nil
	case ExportXLSX:
		data, err := render.ServicesXLSX(services)
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    "services.xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		return nil, apperror.NewBadRequestError("Unsupported export format")
	}
}

func (s *CatalogService) filtered(ctx context.Context, sess entity.DoctorSession, filter CatalogFilter) ([]entity.CatalogService, error) {
	status := strings.ToLower(filter.Status)
	switch status {
	case "", CatalogStatusAll, CatalogStatusEnabled, CatalogStatusDisabled:
	default:
		return nil, apperror.NewBadRequestError("Invalid status filter")
	}

	services, err := s.backend.ListServices(ctx, sess)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("failed to fetch services, listing default", zap.String("doctor_id", sess.DoctorID), zap.Error(err))
		services = nil
	}
	if len(services) == 0 {
		services = []entity.CatalogService{entity.DefaultCatalogService(s.now())}
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	return lo.Filter(services, func(svc entity.CatalogService, _ int) bool {
		switch status {
		case CatalogStatusEnabled:
			if svc.Disabled {
				return false
			}
		case CatalogStatusDisabled:
			if !svc.Disabled {
				return false
			}
		}
		return search == "" || strings.Contains(strings.ToLower(svc.Name), search)
	}), nil
}

func validateServiceInput(in entity.CatalogServiceInput) (entity.CatalogServiceInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.Price <= 0 {
		return in, apperror.NewValidationError("Please fill all required fields correctly.")
	}
	return in, nil
}
