// Package health provides HTTP health check endpoints for liveness and
// readiness probes.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"cradle/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// CheckFunc is a function that checks the health of a dependency.
// It returns nil if healthy, or an error describing the issue.
type CheckFunc func(ctx context.Context) error

// Handler provides health check endpoints.
type Handler struct {
	startTime time.Time
	profile   string

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// New creates a new health handler.
func New(profile string) *Handler {
	return &Handler{
		startTime: time.Now(),
		profile:   profile,
		checks:    make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named health check for the readiness probe.
func (h *Handler) RegisterCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Register mounts health check routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)
}

// HandleHealth implements GET /health: is the process running?
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        Version,
		"profile":        h.profile,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// HandleReady implements GET /ready: can the service handle requests?
// Runs every registered dependency check; any failure makes the service
// not ready and returns 503.
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := make(map[string]CheckFunc, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()

	results := make(map[string]string, len(checks))
	ready := true
	for name, check := range checks {
		if err := check(r.Context()); err != nil {
			results[name] = "unhealthy"
			ready = false
		} else {
			results[name] = "healthy"
		}
	}

	status := http.StatusOK
	overall := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		overall = "not_ready"
	}

	httputil.WriteJSON(w, status, map[string]any{
		"status": overall,
		"checks": results,
	})
}
