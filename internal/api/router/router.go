package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/pratik-mahalle/petalert/docs"
	"github.com/pratik-mahalle/petalert/internal/api/handlers"
	"github.com/pratik-mahalle/petalert/internal/api/middleware"
	"github.com/pratik-mahalle/petalert/internal/config"
	"github.com/pratik-mahalle/petalert/internal/domain/user"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/metrics"
)

type Handlers struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Pet          *handlers.PetHandler
	Alert        *handlers.AlertHandler
	Subscription *handlers.SubscriptionHandler
	DeadLetter   *handlers.DeadLetterHandler
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestID())
	r.Use(metrics.Middleware)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

	// Operational endpoints
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SecurityHeaders)

		// Public auth endpoints
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/logout", h.Auth.Logout)

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

			r.Get("/auth/me", h.Auth.Me)
			r.Put("/auth/me/preferences", h.Auth.UpdatePreferences)

			r.Route("/pets", func(r chi.Router) {
				r.Get("/", h.Pet.List)
				r.Post("/", h.Pet.Create)
				r.Get("/{id}", h.Pet.Get)
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", h.Alert.List)
				r.Post("/", h.Alert.Create)
				r.Get("/{id}", h.Alert.Get)
				r.Patch("/{id}", h.Alert.Update)
				r.Post("/{id}/status", h.Alert.ChangeStatus)
				r.Get("/{id}/events", h.Alert.History)
				r.Get("/{id}/events/latest", h.Alert.LatestEvent)

				r.Post("/{id}/subscription", h.Subscription.Subscribe)
				r.Delete("/{id}/subscription", h.Subscription.Unsubscribe)
				r.Get("/{id}/subscribers", h.Subscription.Subscribers)
			})

			r.Get("/subscriptions", h.Subscription.Mine)

			// Admin
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(user.RoleAdmin))
				r.Get("/dead-letters", h.DeadLetter.List)
				r.Get("/dead-letters/{eventId}", h.DeadLetter.Get)
			})
		})
	})

	return r
}
