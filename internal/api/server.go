package api

import (
	"net/http"
	"time"

	accessapi "github.com/datavault-fs/knowledge-backend/internal/api/access"
	costopsapi "github.com/datavault-fs/knowledge-backend/internal/api/costops"
	"github.com/datavault-fs/knowledge-backend/internal/api/docs"
	"github.com/datavault-fs/knowledge-backend/internal/api/middleware"
	reportapi "github.com/datavault-fs/knowledge-backend/internal/api/report"
	searchapi "github.com/datavault-fs/knowledge-backend/internal/api/search"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	searchHandler *searchapi.Handler,
	accessHandler *accessapi.Handler,
	reportHandler *reportapi.Handler,
	costopsHandler *costopsapi.Handler,
	sessions middleware.SessionValidator,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(chimiddleware.RequestID)                 // Add request ID
	r.Use(middleware.Logger(logger))               // Log requests
	r.Use(middleware.CORS)                         // Handle CORS
	r.Use(chimiddleware.Timeout(60 * time.Second)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Session and access endpoints are open; everything touching the
	// vendor requires a valid session token.
	accessapi.RegisterRoutes(r, accessHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(sessions))

		searchapi.RegisterRoutes(r, searchHandler)
		reportapi.RegisterRoutes(r, reportHandler)
		costopsapi.RegisterRoutes(r, costopsHandler)
	})

	return r
}
