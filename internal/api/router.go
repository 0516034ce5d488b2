package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/testdesk/internal/api/handler"
	"github.com/good-yellow-bee/testdesk/internal/api/middleware"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogger(s.log, s.config.Verbose))
	r.Use(middleware.PrometheusMiddleware)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recoverer(s.log))

	h := handler.New(s.store, s.log, s.config.NotificationTTL)

	// Mutating routes share one per-client limit.
	limit := func(r chi.Router) chi.Router { return r }
	if s.config.RateLimitPerIP > 0 {
		s.limiter = middleware.NewRateLimiter(s.config.RateLimitPerIP)
		limit = func(r chi.Router) chi.Router { return r.With(middleware.RateLimitByIP(s.limiter)) }
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/members", func(r chi.Router) {
			r.Get("/", h.ListMembers)
			limit(r).Post("/", h.AddMember)
			limit(r).Delete("/{role}/{name}", h.RemoveMember)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			limit(r).Post("/", h.CreateProject)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetProject)
				r.Get("/history", h.History)
				limit(r).Patch("/", h.UpdateProject)
				limit(r).Post("/approve", h.Approve)
				limit(r).Post("/reject", h.Reject)
				limit(r).Post("/complete", h.Complete)
				limit(r).Post("/requests", h.CreateRequest)
				limit(r).Post("/bug-files", h.SendBugFile)
			})
		})

		r.Get("/testers/suggestion", h.Suggestion)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			limit(r).Post("/receipts", h.RecordReceipt)
			limit(r).Post("/payouts", h.RecordPayout)
		})

		r.Get("/requests", h.ListRequests)
		r.Get("/notifications", h.ListNotifications)
		r.Get("/notifications/latest", h.LatestNotification)
		r.Get("/stats", h.Stats)
	})

	r.Get("/health", s.healthHandler.Health)
	r.Get("/health/live", s.healthHandler.Live)
	r.Get("/health/ready", s.healthHandler.Ready)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.JSONError(w, handler.ErrNotFound)
	})

	return r
}
