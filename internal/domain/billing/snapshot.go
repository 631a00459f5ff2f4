package billing

import (
	"fmt"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/tiendc/go-deepcopy"
)

// Snapshot returns a deep copy of d that shares no memory with it, so it
// can be handed to renderers while the draft keeps changing.
func Snapshot(d *entity.InvoiceDraft) (*entity.InvoiceDraft, error) {
	out := *d
	out.LineItems = nil
	out.Patient = nil

	if err := deepcopy.Copy(&out.LineItems, &d.LineItems); err != nil {
		return nil, fmt.Errorf("copy line items: %w", err)
	}
	if d.Patient != nil {
		patient := *d.Patient
		out.Patient = &patient
	}
	if out.LineItems == nil {
		out.LineItems = []entity.LineItem{}
	}
	return &out, nil
}
