// Package service implements profile and admin user management on top of
// the user store.
package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	dErrors "cradle/pkg/domain-errors"
	"cradle/pkg/requestcontext"
	"cradle/pkg/secrets"

	"cradle/internal/audit"
	"cradle/internal/users/models"
	"cradle/internal/users/store"
)

// Service implements user profile and admin operations. All operations are
// scoped to a single tenant; admin callers can never cross tenants.
type Service struct {
	users    store.UserStore
	recorder *audit.Recorder
	logger   *slog.Logger
}

// New wires the users service.
func New(users store.UserStore, recorder *audit.Recorder, logger *slog.Logger) *Service {
	return &Service{users: users, recorder: recorder, logger: logger}
}

// GetProfile returns the caller's own user record.
func (s *Service) GetProfile(ctx context.Context, identity requestcontext.Identity) (*models.User, error) {
	return s.users.GetByID(ctx, identity.TenantID, identity.UserID)
}

// UpdateProfile applies a partial update to the caller's own record.
// Self-service updates cannot change the active flag.
func (s *Service) UpdateProfile(ctx context.Context, identity requestcontext.Identity, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, identity.TenantID, identity.UserID)
	if err != nil {
		return nil, err
	}
	old := snapshot(user)

	if err := applyUpdate(user, req, false); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.recordUpdate(ctx, identity, user, old)
	return user, nil
}

// List returns a page of users in the caller's tenant.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]*models.User, error) {
	return s.users.List(ctx, tenantID, offset, limit)
}

// Get returns a user by id within the tenant.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, tenantID, id)
}

// Create adds a user on behalf of an admin. Admin-created accounts start
// active with the default role.
func (s *Service) Create(ctx context.Context, identity requestcontext.Identity, req *models.CreateUserRequest) (*models.User, error) {
	hash, err := secrets.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           uuid.New(),
		TenantID:     identity.TenantID,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Roles:        []string{models.RoleUser},
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	newValues, _ := json.Marshal(snapshot(user))
	s.recorder.Record(ctx, audit.Entry{
		TenantID:           identity.TenantID,
		ActorID:            &identity.UserID,
		ActorEmail:         identity.Email,
		Action:             audit.ActionUserCreate,
		ResourceType:       "user",
		ResourceID:         user.ID.String(),
		Success:            true,
		NewValues:          newValues,
		DataClassification: audit.ClassificationInternal,
	})
	return user, nil
}

// Update applies a partial update to any user in the tenant, including the
// active flag.
func (s *Service) Update(ctx context.Context, identity requestcontext.Identity, id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, identity.TenantID, id)
	if err != nil {
		return nil, err
	}
	old := snapshot(user)

	if err := applyUpdate(user, req, true); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.recordUpdate(ctx, identity, user, old)
	return user, nil
}

// Delete removes a user from the tenant. Admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, identity requestcontext.Identity, id uuid.UUID) error {
	if id == identity.UserID {
		return dErrors.New(dErrors.CodeBadRequest, "cannot delete your own account")
	}

	user, err := s.users.GetByID(ctx, identity.TenantID, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, identity.TenantID, id); err != nil {
		return err
	}

	oldValues, _ := json.Marshal(snapshot(user))
	s.recorder.Record(ctx, audit.Entry{
		TenantID:           identity.TenantID,
		ActorID:            &identity.UserID,
		ActorEmail:         identity.Email,
		Action:             audit.ActionUserDelete,
		ResourceType:       "user",
		ResourceID:         id.String(),
		Success:            true,
		OldValues:          oldValues,
		DataClassification: audit.ClassificationConfidential,
	})
	return nil
}

func applyUpdate(user *models.User, req *models.UpdateUserRequest, allowActive bool) error {
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Password != nil {
		hash, err := secrets.HashPassword(*req.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	if req.IsActive != nil && allowActive {
		user.IsActive = *req.IsActive
	}
	return nil
}

func (s *Service) recordUpdate(ctx context.Context, identity requestcontext.Identity, user *models.User, old map[string]any) {
	oldValues, _ := json.Marshal(old)
	newValues, _ := json.Marshal(snapshot(user))
	s.recorder.Record(ctx, audit.Entry{
		TenantID:           identity.TenantID,
		ActorID:            &identity.UserID,
		ActorEmail:         identity.Email,
		Action:             audit.ActionUserUpdate,
		ResourceType:       "user",
		ResourceID:         user.ID.String(),
		Success:            true,
		OldValues:          oldValues,
		NewValues:          newValues,
		DataClassification: audit.ClassificationInternal,
	})
}

// snapshot captures auditable fields only. Password hashes never enter the
// audit trail.
func snapshot(user *models.User) map[string]any {
	return map[string]any{
		"email":     user.Email,
		"full_name": user.FullName,
		"roles":     user.Roles,
		"is_active": user.IsActive,
	}
}
