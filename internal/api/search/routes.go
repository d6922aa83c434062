package search

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers search routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/search", func(r chi.Router) {
		r.Post("/", h.FederatedSearch)
		r.Post("/categorized", h.CategorizedSearch)
		r.Get("/boxes", h.ListBoxes)
	})
}
