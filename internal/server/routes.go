package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"travel-backoffice/internal/database"
	"travel-backoffice/internal/models"
)

// RegisterRoutes sets up the router with all endpoints.
func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)
	if s.cfg.Security.RateLimitEnabled {
		r.Use(s.limiter.Middleware)
	}

	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.loginHandler)
		r.Post("/sessions/end", s.endSessionHandler)
		r.Post("/webhooks/payments", s.paymentWebhookHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Route("/auth", func(r chi.Router) {
				r.With(adminOnly).Post("/signup", s.signupHandler)
				r.Post("/logout", s.logoutHandler)
				r.Get("/me", s.meHandler)
				r.Post("/password", s.changePasswordHandler)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/heartbeat", s.heartbeatHandler)
				r.With(adminOnly).Get("/active", s.activeSessionsHandler)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", s.listEmployeesHandler)
				r.Post("/", s.createEmployeeHandler)
				r.Get("/{id}", s.getEmployeeHandler)
				r.Put("/{id}", s.updateEmployeeHandler)
				r.Delete("/{id}", s.deleteEmployeeHandler)
			})

			r.Route("/leads", func(r chi.Router) {
				r.Get("/", s.listLeadsHandler)
				r.Post("/", s.createLeadHandler)
				r.Get("/{id}", s.getLeadHandler)
				r.Put("/{id}", s.updateLeadHandler)
				r.Delete("/{id}", s.deleteLeadHandler)
			})

			r.Route("/itineraries", func(r chi.Router) {
				r.Get("/", s.listItinerariesHandler)
				r.Post("/", s.createItineraryHandler)
				r.Get("/{id}", s.getItineraryHandler)
				r.Put("/{id}", s.updateItineraryHandler)
				r.Delete("/{id}", s.deleteItineraryHandler)
				r.Post("/{id}/assign", s.assignItineraryHandler)
				r.Post("/{id}/pdf", s.itineraryPDFHandler)
			})

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", s.listBookingsHandler)
				r.Post("/", s.createBookingHandler)
				r.Get("/{id}", s.getBookingHandler)
				r.Put("/{id}", s.updateBookingHandler)
				r.Delete("/{id}", s.deleteBookingHandler)
				r.Get("/{id}/billing", s.bookingBillingHandler)
				r.Post("/{id}/resend-email", s.resendEmailHandler)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", s.listPaymentsHandler)
				r.Post("/", s.createPaymentHandler)
				r.Get("/{id}", s.getPaymentHandler)
				r.Put("/{id}", s.updatePaymentHandler)
				r.Delete("/{id}", s.deletePaymentHandler)
			})

			for _, t := range database.CatalogTables {
				s.registerCatalog(r, t)
			}

			r.Post("/uploads", s.uploadHandler)
			r.Get("/dashboard", s.dashboardHandler)
		})
	})

	return r
}

func (s *Server) registerCatalog(r chi.Router, t *database.Table) {
	r.Route("/"+t.Path, func(r chi.Router) {
		r.Get("/", s.listRecordsHandler(t))
		r.Post("/", s.createRecordHandler(t))
		r.Get("/{id}", s.getRecordHandler(t))
		r.Put("/{id}", s.updateRecordHandler(t))
		r.Delete("/{id}", s.deleteRecordHandler(t))
	})
}

// healthHandler provides health information.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := s.db.Health()
	jsonResp, _ := json.Marshal(stats)
	w.Header().Set("Content-Type", "application/json")
	if stats["status"] != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	w.Write(jsonResp)
}

// isStaffManager reports whether the caller sees every employee's records.
func isStaffManager(r *http.Request) bool {
	c := claimsFrom(r.Context())
	return c != nil && models.IsStaffManager(c.Role)
}
