/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for clients

ROUTE GROUPS:
  /api/guides/*   Pay guide configuration
  /api/shifts/*   Shift calculation and lookup
  /api/users/*    Per-user shifts, tax settings, pay periods, YTD

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Pay guide routes
		r.Route("/guides", func(r chi.Router) {
			r.Get("/", h.ListGuides)
			r.Post("/", h.CreateGuide)
			r.Get("/{id}", h.GetGuide)
		})

		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Post("/", h.CalculateShift)
			r.Get("/{id}", h.GetShift)
		})

		// Per-user routes
		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/shifts", h.ListUserShifts)
			r.Get("/tax-settings", h.GetTaxSettings)
			r.Put("/tax-settings", h.UpdateTaxSettings)
			r.Post("/pay-periods/sync", h.SyncPayPeriod)
			r.Get("/pay-periods", h.ListPayPeriods)
			r.Get("/ytd", h.GetYearToDate)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
