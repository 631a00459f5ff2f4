package billing

import (
	"strings"

	"github.com/samber/lo"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
)

// SearchCatalog returns the enabled entries whose name contains query,
// ignoring case. An empty query matches nothing.
func SearchCatalog(catalog []entity.CatalogService, query string) []entity.CatalogService {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)
	return lo.Filter(catalog, func(svc entity.CatalogService, _ int) bool {
		return !svc.Disabled && strings.Contains(strings.ToLower(svc.Name), q)
	})
}

// SearchPatients matches query against full names, ignoring case.
func SearchPatients(patients []entity.Patient, query string) []entity.Patient {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)
	return lo.Filter(patients, func(p entity.Patient, _ int) bool {
		return strings.Contains(strings.ToLower(p.FullName), q)
	})
}

// FindService looks a catalog entry up by id.
func FindService(catalog []entity.CatalogService, id string) (entity.CatalogService, bool) {
	return lo.Find(catalog, func(svc entity.CatalogService) bool {
		return svc.ID == id
	})
}

// FindPatient looks a patient up by id.
func FindPatient(patients []entity.Patient, id string) (entity.Patient, bool) {
	return lo.Find(patients, func(p entity.Patient) bool {
		return p.ID == id
	})
}
