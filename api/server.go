/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/students/*       Student management + balance
  /api/promotions/*     Promotion (cohort) management
  /api/centers/*        Teaching locations
  /api/fees/*           Fee line items
  /api/payments/*       Guarded payment mutations
  /api/dashboard/*      Aggregate stats
  /api/scenarios/*      Demo scenarios (dev only)

SECURITY NOTE:
  No authentication middleware. All endpoints are public; session
  handling belongs to the surrounding deployment.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
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
		// Student routes
		r.Route("/students", func(r chi.Router) {
			r.Get("/", h.ListStudents)
			r.Post("/", h.CreateStudent)
			r.Get("/{id}", h.GetStudent)
			r.Put("/{id}", h.UpdateStudent)
			r.Delete("/{id}", h.DeleteStudent)
			r.Get("/{id}/balance", h.GetBalance)
			r.Get("/{id}/fees", h.ListStudentFees)
		})

		// Promotion routes
		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", h.ListPromotions)
			r.Post("/", h.CreatePromotion)
			r.Get("/{id}", h.GetPromotion)
			r.Put("/{id}", h.UpdatePromotion)
			r.Delete("/{id}", h.DeletePromotion)
		})

		// Center routes
		r.Route("/centers", func(r chi.Router) {
			r.Get("/", h.ListCenters)
			r.Post("/", h.CreateCenter)
			r.Get("/{id}", h.GetCenter)
			r.Put("/{id}", h.UpdateCenter)
			r.Delete("/{id}", h.DeleteCenter)
		})

		// Fee routes
		r.Route("/fees", func(r chi.Router) {
			r.Post("/", h.CreateFee)
			r.Put("/{id}", h.UpdateFee)
			r.Delete("/{id}", h.DeleteFee)
		})

		// Payment routes
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.CreatePayment)
			r.Put("/{id}", h.UpdatePayment)
			r.Delete("/{id}", h.DeletePayment)
		})

		// Dashboard routes
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/stats", h.GetStats)
		})

		// Scenario routes (dev/demo)
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
