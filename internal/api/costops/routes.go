package costops

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers cost optimization and document routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/costs", func(r chi.Router) {
		r.Get("/analysis", h.AnalyzeUsage)
		r.Get("/savings", h.GetSavings)
		r.Post("/roi", h.CalculateROI)
	})

	r.Route("/documents", func(r chi.Router) {
		r.Post("/dedup", h.DeduplicateDocuments)
		r.Post("/index", h.IndexDocuments)
		r.Post("/strategy", h.IndexingStrategy)
	})
}
