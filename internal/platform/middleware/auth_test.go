package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cradle/internal/token"
	"cradle/pkg/requestcontext"
)

type fakeRevocation struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocation) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[jti], nil
}

func newTokenService() *token.Service {
	return token.NewService("0123456789abcdef0123456789abcdef", "cradle", 30*time.Minute, time.Hour)
}

func issuePair(t *testing.T, svc *token.Service, roles ...string) token.Pair {
	t.Helper()
	pair, err := svc.IssuePair(token.Subject{
		UserID:   mustUUID(t),
		TenantID: mustUUID(t),
		Email:    "user@example.com",
		Roles:    roles,
	})
	require.NoError(t, err)
	return pair
}

func identityEcho(t *testing.T) (http.Handler, *requestcontext.Identity) {
	t.Helper()
	var captured requestcontext.Identity
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requestcontext.GetIdentity(r.Context())
		require.True(t, ok)
		captured = identity
		w.WriteHeader(http.StatusOK)
	})
	return h, &captured
}

func TestRequireAuthValidToken(t *testing.T) {
	svc := newTokenService()
	pair := issuePair(t, svc, "user")
	next, captured := identityEcho(t)

	handler := RequireAuth(svc, nil, discardLogger())(next)

	r := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	r.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user@example.com", captured.Email)
	assert.False(t, captured.IsAdmin())
}

func TestRequireAuthMissingHeader(t *testing.T) {
	handler := RequireAuth(newTokenService(), nil, discardLogger())(failIfReached(t))

	r := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRefreshTokenRejected(t *testing.T) {
	svc := newTokenService()
	pair := issuePair(t, svc, "user")

	handler := RequireAuth(svc, nil, discardLogger())(failIfReached(t))

	r := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	r.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRevokedToken(t *testing.T) {
	svc := newTokenService()
	pair := issuePair(t, svc, "user")

	claims, err := svc.DecodeAccess(pair.AccessToken)
	require.NoError(t, err)
	checker := &fakeRevocation{revoked: map[string]bool{claims.ID: true}}

	handler := RequireAuth(svc, checker, discardLogger())(failIfReached(t))

	r := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	r.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRevocationCheckError(t *testing.T) {
	svc := newTokenService()
	pair := issuePair(t, svc, "user")
	checker := &fakeRevocation{err: assert.AnError}

	handler := RequireAuth(svc, checker, discardLogger())(failIfReached(t))

	r := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	r.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code, "revocation errors fail closed, not open")
}

func TestRequireAdmin(t *testing.T) {
	svc := newTokenService()
	adminPair := issuePair(t, svc, "admin", "user")
	userPair := issuePair(t, svc, "user")

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(svc, nil, discardLogger())(RequireAdmin(discardLogger())(ok))

	r := httptest.NewRequest(http.MethodGet, "/users", nil)
	r.Header.Set("Authorization", "Bearer "+adminPair.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)

	r = httptest.NewRequest(http.MethodGet, "/users", nil)
	r.Header.Set("Authorization", "Bearer "+userPair.AccessToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminWithoutAuth(t *testing.T) {
	handler := RequireAdmin(discardLogger())(failIfReached(t))

	r := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func failIfReached(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not be reached")
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
