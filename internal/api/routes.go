package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.config.CORS.Origins(),
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/datasets", h.HandleUpload)
		r.Route("/datasets/{datasetID}", func(r chi.Router) {
			r.Get("/", h.HandleGetDataset)
			r.Delete("/", h.HandleDeleteDataset)
			r.Post("/filter", h.HandleFilter)
			r.Post("/estimate", h.HandleEstimate)
			r.Post("/export", h.HandleExport)
		})
	})

	return r
}
