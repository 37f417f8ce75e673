// Package server assembles the HTTP surface: middleware stack, route
// registration, and the listener lifecycle with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cradle/internal/audit"
	"cradle/internal/auth"
	"cradle/internal/platform/config"
	"cradle/internal/platform/health"
	"cradle/internal/platform/metrics"
	"cradle/internal/platform/middleware"
	"cradle/internal/token"
	userhandler "cradle/internal/users/handler"
	userservice "cradle/internal/users/service"
	userstore "cradle/internal/users/store"
)

const (
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// Dependencies carries everything the router needs. Metrics and Sink may be
// nil; a nil Denylist disables revocation checks.
type Dependencies struct {
	Config   config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Tokens   *token.Service
	Users    userstore.UserStore
	Audits   audit.Store
	Denylist auth.Denylist
	Sink     audit.Sink
	Health   *health.Handler
}

// NewRouter builds the full route tree.
func NewRouter(deps Dependencies) chi.Router {
	recorderOpts := []audit.RecorderOption{}
	if deps.Sink != nil {
		recorderOpts = append(recorderOpts, audit.WithSink(deps.Sink))
	}
	if deps.Metrics != nil {
		recorderOpts = append(recorderOpts, audit.WithMetrics(deps.Metrics))
	}
	recorder := audit.NewRecorder(deps.Audits, deps.Logger, recorderOpts...)

	authService := auth.NewService(deps.Users, deps.Tokens, deps.Denylist, recorder, deps.Metrics, deps.Logger)
	authHandler := auth.NewHandler(authService, deps.Logger)

	usersService := userservice.New(deps.Users, recorder, deps.Logger)
	usersHandler := userhandler.New(usersService, deps.Logger)

	auditHandler := audit.NewHandler(recorder, deps.Logger)

	metadata := middleware.NewMetadata(deps.Config.TrustedProxies)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(metadata.Handler)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.BodyLimit(maxBodyBytes))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics.HTTPRequests, deps.Metrics.EndpointLatency))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", auth.TenantHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if deps.Health != nil {
		deps.Health.Register(r)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authHandler.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Tokens, deps.Denylist, deps.Logger))

		authHandler.RegisterProtected(r)
		usersHandler.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.Logger))
			usersHandler.RegisterAdmin(r)
			auditHandler.Register(r)
		})
	})

	return r
}

// Server wraps http.Server with graceful shutdown.
type Server struct {
	srv             *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New builds a Server listening on the configured address.
func New(cfg config.Config, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       requestTimeout,
			WriteTimeout:      requestTimeout + 5*time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests within
// the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
