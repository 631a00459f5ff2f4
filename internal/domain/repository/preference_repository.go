package repository

import (
	"context"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
)

// PreferenceRepository persists versioned per-doctor key/value records
type PreferenceRepository interface {
	// Get returns nil, nil when no record exists
	Get(ctx context.Context, ownerID, key string) (*entity.StoredPreference, error)
	Save(ctx context.Context, pref *entity.StoredPreference) error
	Delete(ctx context.Context, ownerID, key string) error
}
