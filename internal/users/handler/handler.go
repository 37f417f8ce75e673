// Package handler exposes profile and admin user management over HTTP.
// All routes require a validated access token; the admin routes
// additionally sit behind the admin-role middleware.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	dErrors "cradle/pkg/domain-errors"
	"cradle/pkg/platform/httputil"
	"cradle/pkg/requestcontext"

	"cradle/internal/users/models"
	"cradle/internal/users/service"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the self-service profile routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users/me", h.HandleGetMe)
	r.Patch("/users/me", h.HandleUpdateMe)
}

// RegisterAdmin mounts the admin-only user management routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/users", h.HandleList)
	r.Post("/users", h.HandleCreate)
	r.Get("/users/{id}", h.HandleGet)
	r.Patch("/users/{id}", h.HandleUpdate)
	r.Delete("/users/{id}", h.HandleDelete)
}

// HandleGetMe implements GET /users/me.
func (h *Handler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requestcontext.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	user, err := h.service.GetProfile(ctx, identity)
	if err != nil {
		h.logger.ErrorContext(ctx, "get profile failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
			"user_id", identity.UserID,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.NewUserResponse(user))
}

// HandleUpdateMe implements PATCH /users/me.
func (h *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requestcontext.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, reqOK := httputil.DecodeAndPrepare[models.UpdateUserRequest](w, r, h.logger)
	if !reqOK {
		return
	}

	user, err := h.service.UpdateProfile(ctx, identity, req)
	if err != nil {
		h.logger.WarnContext(ctx, "update profile failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
			"user_id", identity.UserID,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.NewUserResponse(user))
}

// HandleList implements GET /users with ?skip= and ?limit= paging.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, _ := requestcontext.GetIdentity(ctx)

	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}

	users, err := h.service.List(ctx, identity.TenantID, skip, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list users failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
			"tenant_id", identity.TenantID,
		)
		httputil.WriteError(w, err)
		return
	}

	responses := make([]models.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, models.NewUserResponse(user))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"users": responses,
		"skip":  skip,
		"limit": limit,
	})
}

// HandleCreate implements POST /users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, _ := requestcontext.GetIdentity(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateUserRequest](w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.service.Create(ctx, identity, req)
	if err != nil {
		h.logger.WarnContext(ctx, "create user failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.NewUserResponse(user))
}

// HandleGet implements GET /users/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, _ := requestcontext.GetIdentity(ctx)

	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.Get(ctx, identity.TenantID, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.NewUserResponse(user))
}

// HandleUpdate implements PATCH /users/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, _ := requestcontext.GetIdentity(ctx)

	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.UpdateUserRequest](w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.service.Update(ctx, identity, id, req)
	if err != nil {
		h.logger.WarnContext(ctx, "update user failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
			"target_user_id", id,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.NewUserResponse(user))
}

// HandleDelete implements DELETE /users/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, _ := requestcontext.GetIdentity(ctx)

	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, identity, id); err != nil {
		h.logger.WarnContext(ctx, "delete user failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
			"target_user_id", id,
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid user id")
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
