package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	dErrors "cradle/pkg/domain-errors"
	"cradle/pkg/requestcontext"
	"cradle/pkg/secrets"

	"cradle/internal/audit"
	"cradle/internal/auth/models"
	"cradle/internal/platform/metrics"
	"cradle/internal/token"
	usermodels "cradle/internal/users/models"
	userstore "cradle/internal/users/store"
)

// ErrInvalidCredentials is the single error returned for a failed login.
// It must not reveal whether the email or the password was wrong.
var ErrInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

// Service implements the auth flow against the user store, the token
// service, and the revocation denylist.
type Service struct {
	users    userstore.UserStore
	tokens   *token.Service
	denylist Denylist
	recorder *audit.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService wires the auth flow. metrics may be nil in tests.
func NewService(
	users userstore.UserStore,
	tokens *token.Service,
	denylist Denylist,
	recorder *audit.Recorder,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		denylist: denylist,
		recorder: recorder,
		metrics:  m,
		logger:   logger,
	}
}

// Login exchanges credentials for a token pair. Lookup failure and password
// mismatch are indistinguishable to the caller. A successful login updates
// last_login_at.
func (s *Service) Login(ctx context.Context, tenantID uuid.UUID, req *models.LoginRequest) (token.Pair, error) {
	user, err := s.users.GetByEmail(ctx, tenantID, req.Email)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.recordLoginFailure(ctx, tenantID, req.Email, "unknown_email")
			return token.Pair{}, ErrInvalidCredentials
		}
		return token.Pair{}, dErrors.Wrap(err, dErrors.CodeInternal, "login failed")
	}

	if err := secrets.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		s.recordLoginFailure(ctx, tenantID, req.Email, "bad_password")
		return token.Pair{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.recordLoginFailure(ctx, tenantID, req.Email, "inactive")
		return token.Pair{}, dErrors.New(dErrors.CodeUnauthorized, "account is inactive")
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		// Last-login bookkeeping must not block the login itself.
		s.logger.WarnContext(ctx, "failed to update last login", "error", err, "user_id", user.ID)
	}

	pair, err := s.tokens.IssuePair(token.Subject{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Email:    user.Email,
		Roles:    user.Roles,
	})
	if err != nil {
		return token.Pair{}, err
	}

	if s.metrics != nil {
		s.metrics.Logins.Inc()
	}
	s.recorder.Record(ctx, audit.Entry{
		TenantID:     user.TenantID,
		ActorID:      &user.ID,
		ActorEmail:   user.Email,
		Action:       audit.ActionUserLogin,
		ActionDetail: audit.DeviceSummary(requestcontext.UserAgent(ctx)),
		ResourceType: "user",
		ResourceID:   user.ID.String(),
		Success:      true,
	})
	return pair, nil
}

// Register creates a user with the default role in the given tenant.
// A duplicate (tenant, email) pair is a conflict.
func (s *Service) Register(ctx context.Context, tenantID uuid.UUID, req *models.RegisterRequest) (*usermodels.User, error) {
	hash, err := secrets.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &usermodels.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Roles:        []string{usermodels.RoleUser},
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Registrations.Inc()
	}
	newValues, _ := json.Marshal(map[string]any{"email": user.Email, "roles": user.Roles})
	s.recorder.Record(ctx, audit.Entry{
		TenantID:           tenantID,
		ActorID:            &user.ID,
		ActorEmail:         user.Email,
		Action:             audit.ActionUserRegister,
		ResourceType:       "user",
		ResourceID:         user.ID.String(),
		Success:            true,
		NewValues:          newValues,
		DataClassification: audit.ClassificationInternal,
	})
	return user, nil
}

// Refresh exchanges a valid, unrevoked refresh token for a new access
// token. The refresh token itself is not rotated: the returned pair echoes
// it unchanged, and it stays valid until expiry or logout.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	claims, err := s.tokens.DecodeRefresh(refreshToken)
	if err != nil {
		s.countAuthFailure("invalid_refresh_token")
		return token.Pair{}, err
	}

	revoked, err := s.denylist.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return token.Pair{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not verify token status")
	}
	if revoked {
		s.countAuthFailure("revoked_refresh_token")
		return token.Pair{}, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}

	identity, err := claims.Identity()
	if err != nil {
		return token.Pair{}, err
	}

	// Re-check the account: a deactivated or deleted user must not be able
	// to mint fresh access tokens from an old refresh token.
	user, err := s.users.GetByID(ctx, identity.TenantID, identity.UserID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.countAuthFailure("unknown_subject")
			return token.Pair{}, dErrors.New(dErrors.CodeUnauthorized, "account no longer exists")
		}
		return token.Pair{}, dErrors.Wrap(err, dErrors.CodeInternal, "refresh failed")
	}
	if !user.IsActive {
		s.countAuthFailure("inactive")
		return token.Pair{}, dErrors.New(dErrors.CodeUnauthorized, "account is inactive")
	}

	access, err := s.tokens.IssueAccess(token.Subject{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Email:    user.Email,
		Roles:    user.Roles,
	})
	if err != nil {
		return token.Pair{}, err
	}

	if s.metrics != nil {
		s.metrics.TokenRefreshes.Inc()
	}
	s.recorder.Record(ctx, audit.Entry{
		TenantID:     user.TenantID,
		ActorID:      &user.ID,
		ActorEmail:   user.Email,
		Action:       audit.ActionTokenRefresh,
		ResourceType: "user",
		ResourceID:   user.ID.String(),
		Success:      true,
	})
	return token.Pair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// Logout revokes the caller's refresh token and current access token. The
// refresh token must belong to the authenticated caller.
func (s *Service) Logout(ctx context.Context, identity requestcontext.Identity, refreshToken string) error {
	claims, err := s.tokens.DecodeRefresh(refreshToken)
	if err != nil {
		return err
	}
	if claims.Subject != identity.UserID.String() {
		return dErrors.New(dErrors.CodeForbidden, "refresh token does not belong to caller")
	}

	if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
		if err := s.denylist.Deny(ctx, claims.ID, ttl); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not revoke refresh token")
		}
	}
	if identity.TokenID != "" {
		if err := s.denylist.Deny(ctx, identity.TokenID, s.tokens.AccessTTL()); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not revoke access token")
		}
	}

	if s.metrics != nil {
		s.metrics.Logouts.Inc()
	}
	s.recorder.Record(ctx, audit.Entry{
		TenantID:     identity.TenantID,
		ActorID:      &identity.UserID,
		ActorEmail:   identity.Email,
		Action:       audit.ActionUserLogout,
		ResourceType: "user",
		ResourceID:   identity.UserID.String(),
		Success:      true,
	})
	return nil
}

func (s *Service) recordLoginFailure(ctx context.Context, tenantID uuid.UUID, email, reason string) {
	s.countAuthFailure(reason)
	s.recorder.Record(ctx, audit.Entry{
		TenantID:     tenantID,
		ActorEmail:   email,
		Action:       audit.ActionLoginFailed,
		ActionDetail: audit.DeviceSummary(requestcontext.UserAgent(ctx)),
		Success:      false,
		ErrorMessage: "invalid email or password",
	})
}

func (s *Service) countAuthFailure(reason string) {
	if s.metrics != nil {
		s.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
}
