// Package routes assembles the chi router and the middleware chain.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/qmshub/api/internal/config"
	"github.com/qmshub/api/internal/infra/http/handler"
	"github.com/qmshub/api/internal/infra/http/middleware"
	"github.com/qmshub/api/pkg/logger"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Finding      *handler.FindingHandler
	Action       *handler.ActionHandler
	Organization *handler.OrganizationHandler
	Health       *handler.HealthHandler
}

// New builds the HTTP router. The middleware order matters: request identity
// and metrics wrap everything, the timeout bounds handler work, and the rate
// limiter runs after authentication so it can key by tenant.
func New(cfg *config.Config, h Handlers, limiter middleware.Limiter, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace)
	r.Use(middleware.Metrics)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.Get("/health/live", h.Health.Live)
	r.Get("/health/ready", h.Health.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Auth.JWTSecret, cfg.Auth.Issuer))
		if cfg.RateLimit.Enabled && limiter != nil {
			r.Use(middleware.RateLimit(limiter, log))
		}

		r.Route("/findings", func(r chi.Router) {
			r.Post("/", h.Finding.Create)
			r.Get("/", h.Finding.List)

			r.Route("/{findingID}", func(r chi.Router) {
				r.Get("/", h.Finding.Get)
				r.Patch("/", h.Finding.Update)
				r.Post("/transition", h.Finding.Transition)
				r.Post("/reopen", h.Finding.Reopen)
				r.Get("/history", h.Finding.ListHistory)
				r.Get("/tags", h.Finding.ListTags)

				r.Post("/actions", h.Action.Attach)
				r.Get("/actions", h.Action.ListByFinding)
			})
		})

		r.Patch("/actions/{actionID}/estado", h.Action.UpdateState)

		// Organizations are administered through the CLI; the API only lets
		// a caller read its own organization.
		r.Get("/organizations/{organizationID}", h.Organization.Get)
	})

	return r
}
