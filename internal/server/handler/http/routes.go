// Package http exposes the view controller and the painted screen as a
// local JSON API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/krishichetan/kchetan/internal/middleware"
)

// NewRouter constructs the view server handler.
//
// Routes:
//
//	GET  /healthz                          → Health
//	POST /api/login                        → Login
//	GET  /api/view                         → View
//	POST /api/modules/{id}                 → Activate
//	POST /api/refresh                      → Refresh
//	POST /api/language/{lang}              → Language
//	POST /api/chat                         → Chat
//	POST /api/diagnose                     → Diagnose
//	POST /api/profile                      → SaveProfile
//	POST /api/advisories/{id}/status       → AdvisoryStatus
//	POST /api/officer/recs/{id}/validate   → ValidateRecommendation
//	POST /api/officer/advisories           → SendAdvisory
//	POST /api/logout                       → Logout
//
// Middleware chain (applied in order):
//  1. RequestID
//  2. AllowContentType: JSON bodies, plus multipart for image uploads
//  3. WithRequestLogging
//  4. RequireSession: everything except /healthz and /api/login
func NewRouter(h *ViewHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.RequireSession(h.Controller.Session))

	r.Get("/healthz", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Get("/view", h.View)
		r.Post("/modules/{id}", h.Activate)
		r.Post("/refresh", h.Refresh)
		r.Post("/language/{lang}", h.Language)
		r.Post("/chat", h.Chat)
		r.Post("/diagnose", h.Diagnose)
		r.Post("/profile", h.SaveProfile)
		r.Post("/advisories/{id}/status", h.AdvisoryStatus)
		r.Route("/officer", func(r chi.Router) {
			r.Post("/recs/{id}/validate", h.ValidateRecommendation)
			r.Post("/advisories", h.SendAdvisory)
		})
		r.Post("/logout", h.Logout)
	})

	return r
}
