package repository

import (
	"context"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves an idempotency key by its key string and doctor
	GetByKey(ctx context.Context, key, doctorID string) (*entity.IdempotencyKey, error)
	// Create stores a new idempotency key
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired removes expired idempotency keys
	DeleteExpired(ctx context.Context) (int64, error)
}
