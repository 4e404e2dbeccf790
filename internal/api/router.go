package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required, rate limited)
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimitMiddleware)
			r.Post("/auth/register", s.handleRegister)
			r.Post("/auth/login", s.handleLogin)
			r.Post("/auth/refresh", s.handleRefresh)
			r.Post("/auth/logout", s.handleLogout)
		})

		// Built-in timers (no auth required, for embedded displays)
		r.Get("/timers/presets/default", s.handleDefaultPresets)
		r.Get("/timers/embed", s.handleTimerEmbed)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			// Roster endpoints
			r.Route("/rosters", func(r chi.Router) {
				r.Get("/", s.handleListRosters)
				r.Post("/", s.handleCreateRoster)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetRoster)
					r.Put("/", s.handleUpdateRoster)
					r.Delete("/", s.handleDeleteRoster)
				})
			})

			// Seating chart endpoints
			r.Route("/seating-charts", func(r chi.Router) {
				r.Get("/", s.handleListCharts)
				r.Post("/", s.handleCreateChart)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetChart)
					r.Put("/", s.handleUpdateChart)
					r.Delete("/", s.handleDeleteChart)
				})
			})

			// Saved timer presets
			r.Route("/timers/presets", func(r chi.Router) {
				r.Get("/", s.handleListPresets)
				r.Post("/", s.handleCreatePreset)
				r.Delete("/{id}", s.handleDeletePreset)
			})

			// Audit trail
			r.Get("/audit", s.handleListAudit)

			// Local AI proxy
			r.Post("/ai/generate", s.handleAIGenerate)
			r.Get("/ai/status", s.handleAIStatus)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"version": s.version,
	})
}
