// Package store provides persistence for user accounts.
package store

import (
	"context"

	"github.com/google/uuid"

	"cradle/internal/users/models"
)

// UserStore is the persistence contract for user accounts. Implementations
// return domain errors: CodeNotFound for missing rows and CodeConflict when
// a (tenant_id, email) pair already exists.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}
