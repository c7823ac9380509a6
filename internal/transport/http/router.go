package http

import (
	"net/http"

	"github.com/carehome-actionplans/internal/application/actionplan"
	"github.com/carehome-actionplans/internal/config"
	"github.com/carehome-actionplans/internal/domain"
	"github.com/carehome-actionplans/internal/transport/http/handler"
	appmiddleware "github.com/carehome-actionplans/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, error) {
	actionPlanSvc, err := actionplan.NewService(actionplan.ServiceDeps{
		Ports:      deps.Ports,
		Guard:      deps.AckGuard,
		Publisher:  deps.Publisher,
		AckTimeout: deps.AckTimeout,
	})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, applied to writes.
	writeRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler(deps.HealthChecks)
	planH := handler.NewActionPlanHandler(actionPlanSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Route("/action-plans", func(r chi.Router) {
				r.Get("/board", planH.Board)
				r.Get("/unseen", planH.Unseen)
				r.Post("/board/opened", planH.BoardOpened)

				r.Group(func(r chi.Router) {
					r.Use(writeRL.Limit)

					r.Put("/{category}/{id}/status", planH.UpdateStatus)
					r.Delete("/{category}/{id}", planH.Delete)
					r.Post("/{category}/viewed", planH.MarkViewed)

					// Raising a plan is a manager task.
					r.With(appmiddleware.RequireRole(domain.RoleAdmin, domain.RoleManager)).
						Post("/{category}", planH.Raise)
				})
			})
		})
	})

	return r, nil
}
