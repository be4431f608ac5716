/*
server.go - Router construction

PURPOSE:
  Builds the chi router: middleware stack, CORS policy, and the route
  table binding URLs to handlers.

ROUTES:
  GET  /health
  POST /api/equipment
  GET  /api/equipment
  GET  /api/equipment/{equipmentID}
  POST /api/equipment/{equipmentID}/usage
  GET  /api/equipment/{equipmentID}/usage
  POST /api/equipment/{equipmentID}/maintenance
  GET  /api/equipment/{equipmentID}/maintenance
  GET  /api/equipment/{equipmentID}/forecasts
  POST /api/equipment/{equipmentID}/forecasts/refresh

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server: Wires this router into an http.Server
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter assembles the HTTP surface around a Handler.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Company-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api/equipment", func(r chi.Router) {
		r.Post("/", h.RegisterEquipment)
		r.Get("/", h.ListEquipment)

		r.Route("/{equipmentID}", func(r chi.Router) {
			r.Get("/", h.GetEquipment)
			r.Post("/usage", h.RecordUsage)
			r.Get("/usage", h.ListUsage)
			r.Post("/maintenance", h.RecordMaintenance)
			r.Get("/maintenance", h.ListMaintenance)
			r.Get("/forecasts", h.ListForecasts)
			r.Post("/forecasts/refresh", h.RefreshForecasts)
		})
	})

	return r
}
