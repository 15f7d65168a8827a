package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/sender-hub/internal/auth"
)

// SetupRoutes configures the router. Tenant routes live under /api behind
// the gateway-header auth middleware; /internal/poll sits outside it because
// the scheduler authenticates with the callback token instead.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://app.ignite.io", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.HeaderTenantID, auth.HeaderTier, auth.HeaderEmail},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Route("/senders", func(r chi.Router) {
			r.Post("/", h.CreateSender)
			r.Get("/", h.ListSenders)

			r.Post("/domain", h.InitiateDomain)
			r.Get("/domain/{domain}", h.GetDomainStatus)

			r.Put("/{id}", h.UpdateSender)
			r.Delete("/{id}", h.DeleteSender)
			r.Put("/{id}/status", h.RefreshSenderStatus)
		})
	})

	r.Post("/internal/poll", h.HandleScheduledPoll)

	return r
}
