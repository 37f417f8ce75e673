package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	dErrors "cradle/pkg/domain-errors"
	"cradle/pkg/platform/httputil"
	"cradle/pkg/requestcontext"

	"cradle/internal/auth/models"
	usermodels "cradle/internal/users/models"
)

// TenantHeader selects the tenant for unauthenticated auth requests.
// Absent or malformed values fall back to the default tenant.
const TenantHeader = "X-Tenant-ID"

// Handler exposes the auth flow over HTTP.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the unauthenticated auth routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/refresh", h.HandleRefresh)
}

// RegisterProtected mounts routes that require a validated access token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
}

// HandleLogin implements POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger)
	if !ok {
		return
	}

	pair, err := h.service.Login(ctx, resolveTenant(r), req)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pair)
}

// HandleRegister implements POST /auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.service.Register(ctx, resolveTenant(r), req)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, usermodels.NewUserResponse(user))
}

// HandleRefresh implements POST /auth/refresh.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.RefreshRequest](w, r, h.logger)
	if !ok {
		return
	}

	pair, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.logger.WarnContext(ctx, "token refresh failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pair)
}

// HandleLogout implements POST /auth/logout behind auth middleware.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requestcontext.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, reqOK := httputil.DecodeAndPrepare[models.LogoutRequest](w, r, h.logger)
	if !reqOK {
		return
	}

	if err := h.service.Logout(ctx, identity, req.RefreshToken); err != nil {
		h.logger.WarnContext(ctx, "logout failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
			"user_id", identity.UserID,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func resolveTenant(r *http.Request) uuid.UUID {
	if raw := r.Header.Get(TenantHeader); raw != "" {
		if tenantID, err := uuid.Parse(raw); err == nil {
			return tenantID
		}
	}
	return usermodels.DefaultTenantID
}
