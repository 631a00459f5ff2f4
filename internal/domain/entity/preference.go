package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredPreference is one versioned key/value record owned by a doctor.
type StoredPreference struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       string    `gorm:"size:64;not null;uniqueIndex:idx_preferences_owner_key" json:"owner_id"`
	Key           string    `gorm:"size:100;not null;uniqueIndex:idx_preferences_owner_key" json:"key"`
	SchemaVersion int       `gorm:"not null;default:1" json:"schema_version"`
	Value         string    `gorm:"type:text;not null" json:"value"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (StoredPreference) TableName() string {
	return "preferences"
}

func (p *StoredPreference) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// InvoiceDefaults are the per-doctor defaults for a new invoice.
type InvoiceDefaults struct {
	Currency string `json:"currency"`
	Method   string `json:"method"`
}
