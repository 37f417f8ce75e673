package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cradle/pkg/domain-errors"
	"cradle/pkg/requestcontext"
	"cradle/pkg/secrets"

	"cradle/internal/audit"
	"cradle/internal/users/models"
	"cradle/internal/users/store"
)

type fixture struct {
	service *Service
	users   *store.MemoryStore
	audits  *audit.InMemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	audits := audit.NewInMemoryStore()
	users := store.NewMemoryStore()
	return &fixture{
		service: New(users, audit.NewRecorder(audits, logger), logger),
		users:   users,
		audits:  audits,
	}
}

func (f *fixture) seedUser(t *testing.T, email string, roles []string) *models.User {
	t.Helper()
	hash, err := secrets.HashPassword("password")
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		TenantID:     models.DefaultTenantID,
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		IsActive:     true,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func identityFor(user *models.User) requestcontext.Identity {
	return requestcontext.Identity{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Email:    user.Email,
		Roles:    user.Roles,
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestGetProfile(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "alice@example.com", []string{"user"})

	got, err := f.service.GetProfile(context.Background(), identityFor(user))
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUpdateProfileCannotDeactivateSelf(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "alice@example.com", []string{"user"})

	got, err := f.service.UpdateProfile(context.Background(), identityFor(user), &models.UpdateUserRequest{
		FullName: strPtr("Alice Liddell"),
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", got.FullName)
	assert.True(t, got.IsActive)
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice@example.com", []string{"user"})
	f.seedUser(t, "bob@example.com", []string{"user"})

	_, err := f.service.UpdateProfile(context.Background(), identityFor(alice), &models.UpdateUserRequest{
		Email: strPtr("bob@example.com"),
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestUpdateProfileChangesPassword(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "alice@example.com", []string{"user"})

	_, err := f.service.UpdateProfile(context.Background(), identityFor(user), &models.UpdateUserRequest{
		Password: strPtr("new-password"),
	})
	require.NoError(t, err)

	stored, err := f.users.GetByID(context.Background(), user.TenantID, user.ID)
	require.NoError(t, err)
	require.NoError(t, secrets.VerifyPassword("new-password", stored.PasswordHash))
}

func TestAdminCreateUser(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "admin@example.com", []string{"admin", "user"})

	user, err := f.service.Create(context.Background(), identityFor(admin), &models.CreateUserRequest{
		Email:    "new@example.com",
		Password: "s3cret-pass",
		FullName: "New User",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, user.Roles)
	assert.Equal(t, admin.TenantID, user.TenantID)

	actions := actionsOf(f.audits)
	assert.Contains(t, actions, audit.ActionUserCreate)
}

func TestAdminUpdateCanDeactivate(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "admin@example.com", []string{"admin", "user"})
	target := f.seedUser(t, "bob@example.com", []string{"user"})

	got, err := f.service.Update(context.Background(), identityFor(admin), target.ID, &models.UpdateUserRequest{
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestAdminDeleteUser(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "admin@example.com", []string{"admin", "user"})
	target := f.seedUser(t, "bob@example.com", []string{"user"})

	require.NoError(t, f.service.Delete(context.Background(), identityFor(admin), target.ID))

	_, err := f.users.GetByID(context.Background(), models.DefaultTenantID, target.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.Contains(t, actionsOf(f.audits), audit.ActionUserDelete)
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "admin@example.com", []string{"admin", "user"})

	err := f.service.Delete(context.Background(), identityFor(admin), admin.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestAuditSnapshotsOmitPasswordHash(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "admin@example.com", []string{"admin", "user"})

	_, err := f.service.Create(context.Background(), identityFor(admin), &models.CreateUserRequest{
		Email:    "new@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	for _, entry := range f.audits.All() {
		assert.NotContains(t, string(entry.NewValues), "s3cret-pass")
		assert.NotContains(t, string(entry.NewValues), "$2a$")
	}
}

func actionsOf(store *audit.InMemoryStore) []string {
	var actions []string
	for _, e := range store.All() {
		actions = append(actions, e.Action)
	}
	return actions
}
