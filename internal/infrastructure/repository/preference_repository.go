package repository

import (
	"context"
	"errors"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
	domainRepo "github.com/sangkips/clinic-billing/internal/domain/repository"
	"gorm.io/gorm"
)

type preferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *gorm.DB) domainRepo.PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Get(ctx context.Context, ownerID, key string) (*entity.StoredPreference, error) {
	var pref entity.StoredPreference
	err := r.db.WithContext(ctx).
		Where(&entity.StoredPreference{OwnerID: ownerID, Key: key}).
		First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pref, nil
}

// Save creates the record on first write and updates it afterwards.
func (r *preferenceRepository) Save(ctx context.Context, pref *entity.StoredPreference) error {
	return r.db.WithContext(ctx).Save(pref).Error
}

func (r *preferenceRepository) Delete(ctx context.Context, ownerID, key string) error {
	return r.db.WithContext(ctx).
		Where(&entity.StoredPreference{OwnerID: ownerID, Key: key}).
		Delete(&entity.StoredPreference{}).Error
}
