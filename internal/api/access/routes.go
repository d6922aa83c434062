package access

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers access control and session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/access", func(r chi.Router) {
		r.Post("/check", h.CheckAccess)
		r.Get("/audit", h.GetAuditLog)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/{id}", h.GetSession)
		r.Delete("/{id}", h.DeleteSession)
	})
}
