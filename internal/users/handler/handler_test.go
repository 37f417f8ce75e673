package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cradle/pkg/requestcontext"
	"cradle/pkg/secrets"

	"cradle/internal/audit"
	"cradle/internal/users/models"
	"cradle/internal/users/service"
	"cradle/internal/users/store"
)

type env struct {
	router *chi.Mux
	users  *store.MemoryStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	users := store.NewMemoryStore()
	svc := service.New(users, audit.NewRecorder(audit.NewInMemoryStore(), logger), logger)
	h := New(svc, logger)

	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)
	return &env{router: r, users: users}
}

func (e *env) seedUser(t *testing.T, email string, roles []string) *models.User {
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
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *env) do(method, path, body string, as *models.User) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if as != nil {
		req = req.WithContext(requestcontext.WithIdentity(req.Context(), requestcontext.Identity{
			UserID:   as.ID,
			TenantID: as.TenantID,
			Email:    as.Email,
			Roles:    as.Roles,
		}))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestGetMe(t *testing.T) {
	e := newEnv(t)
	user := e.seedUser(t, "alice@example.com", []string{"user"})

	rec := e.do(http.MethodGet, "/users/me", "", user)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, user.ID.String(), got.ID)
	assert.Equal(t, "alice@example.com", got.Email)
}

func TestGetMeUnauthenticated(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateMe(t *testing.T) {
	e := newEnv(t)
	user := e.seedUser(t, "alice@example.com", []string{"user"})

	rec := e.do(http.MethodPatch, "/users/me", `{"full_name":"  Alice Liddell  "}`, user)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Alice Liddell", got.FullName)
}

func TestUpdateMeEmailConflict(t *testing.T) {
	e := newEnv(t)
	user := e.seedUser(t, "alice@example.com", []string{"user"})
	e.seedUser(t, "bob@example.com", []string{"user"})

	rec := e.do(http.MethodPatch, "/users/me", `{"email":"bob@example.com"}`, user)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestResponseNeverLeaksPasswordHash(t *testing.T) {
	e := newEnv(t)
	user := e.seedUser(t, "alice@example.com", []string{"user"})

	rec := e.do(http.MethodGet, "/users/me", "", user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "$2a$")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAdminListPagination(t *testing.T) {
	e := newEnv(t)
	admin := e.seedUser(t, "admin@example.com", []string{"admin", "user"})
	e.seedUser(t, "a@example.com", []string{"user"})
	e.seedUser(t, "b@example.com", []string{"user"})

	rec := e.do(http.MethodGet, "/users?skip=0&limit=2", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Users []models.UserResponse `json:"users"`
		Limit int                   `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Users, 2)
	assert.Equal(t, 2, body.Limit)
}

func TestAdminCreateUser(t *testing.T) {
	e := newEnv(t)
	admin := e.seedUser(t, "admin@example.com", []string{"admin", "user"})

	rec := e.do(http.MethodPost, "/users", `{"email":"new@example.com","password":"s3cret-pass"}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got models.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "new@example.com", got.Email)
}

func TestAdminGetInvalidID(t *testing.T) {
	e := newEnv(t)
	admin := e.seedUser(t, "admin@example.com", []string{"admin", "user"})

	rec := e.do(http.MethodGet, "/users/not-a-uuid", "", admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminGetUnknownUser(t *testing.T) {
	e := newEnv(t)
	admin := e.seedUser(t, "admin@example.com", []string{"admin", "user"})

	rec := e.do(http.MethodGet, "/users/"+uuid.NewString(), "", admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDeleteUser(t *testing.T) {
	e := newEnv(t)
	admin := e.seedUser(t, "admin@example.com", []string{"admin", "user"})
	target := e.seedUser(t, "bob@example.com", []string{"user"})

	rec := e.do(http.MethodDelete, "/users/"+target.ID.String(), "", admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	gone := e.do(http.MethodGet, "/users/"+target.ID.String(), "", admin)
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestAdminDeleteSelfRejected(t *testing.T) {
	e := newEnv(t)
	admin := e.seedUser(t, "admin@example.com", []string{"admin", "user"})

	rec := e.do(http.MethodDelete, "/users/"+admin.ID.String(), "", admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
