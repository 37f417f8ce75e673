package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cradle/pkg/platform/httputil"
	"cradle/pkg/requestcontext"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Handler exposes the tenant-scoped audit read surface. Routes registered
// here must sit behind auth and admin middleware.
type Handler struct {
	recorder *Recorder
	logger   *slog.Logger
}

func NewHandler(recorder *Recorder, logger *slog.Logger) *Handler {
	return &Handler{recorder: recorder, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/audit", h.HandleList)
}

// HandleList returns a page of the caller's tenant audit trail, newest
// first. Supports ?skip= and ?limit= query parameters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, _ := requestcontext.GetIdentity(ctx)

	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}

	entries, err := h.recorder.List(ctx, identity.TenantID, skip, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list audit entries failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
			"tenant_id", identity.TenantID,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"skip":    skip,
		"limit":   limit,
	})
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
