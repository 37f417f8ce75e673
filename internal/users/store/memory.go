package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	dErrors "cradle/pkg/domain-errors"

	"cradle/internal/users/models"
)

// MemoryStore is an in-memory UserStore for tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*models.User
}

var _ UserStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[uuid.UUID]*models.User)}
}

// Create inserts a user, enforcing the (tenant_id, email) uniqueness rule.
func (s *MemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.TenantID == user.TenantID && existing.Email == user.Email {
			return dErrors.New(dErrors.CodeConflict, "email already registered")
		}
	}

	now := time.Now().UTC()
	stored := user.Clone()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.users[stored.ID] = stored

	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

// GetByID looks up a user by ID within a tenant.
func (s *MemoryStore) GetByID(_ context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok || user.TenantID != tenantID {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return user.Clone(), nil
}

// GetByEmail looks up a user by email within a tenant.
func (s *MemoryStore) GetByEmail(_ context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.TenantID == tenantID && user.Email == email {
			return user.Clone(), nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
}

// Update replaces a user's mutable fields.
func (s *MemoryStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok || existing.TenantID != user.TenantID {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	for _, other := range s.users {
		if other.ID != user.ID && other.TenantID == user.TenantID && other.Email == user.Email {
			return dErrors.New(dErrors.CodeConflict, "email already registered")
		}
	}

	stored := user.Clone()
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	s.users[stored.ID] = stored

	user.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes a user within a tenant.
func (s *MemoryStore) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok || user.TenantID != tenantID {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	delete(s.users, id)
	return nil
}

// List returns a page of users in a tenant ordered by creation time.
func (s *MemoryStore) List(_ context.Context, tenantID uuid.UUID, offset, limit int) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*models.User
	for _, user := range s.users {
		if user.TenantID == tenantID {
			all = append(all, user)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*models.User{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}

	page := make([]*models.User, 0, end-offset)
	for _, user := range all[offset:end] {
		page = append(page, user.Clone())
	}
	return page, nil
}

// TouchLastLogin records a successful login time.
func (s *MemoryStore) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	now := time.Now().UTC()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	return nil
}
