package api

import (
	"log/slog"
	"net/http"

	"consolidation-route-service/internal/api/handlers"
	"consolidation-route-service/internal/platform/metrics"
	"consolidation-route-service/internal/ports"
	"consolidation-route-service/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(store ports.Store, planner *services.Planner, logger *slog.Logger) http.Handler {
	metrics.RegisterDefault()

	consolidations := &handlers.ConsolidationHandler{Planner: planner, Repo: store, Logger: logger}
	routePlans := &handlers.RoutePlanHandler{Repo: store, Logger: logger}
	shipments := &handlers.ShipmentHandler{Planner: planner, Logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(loggingMiddleware(logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", handlers.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Post("/consolidations/plan", consolidations.Plan)
	r.Get("/consolidations", consolidations.List)
	r.Delete("/consolidations/{id}/shipments/{shipmentId}", consolidations.Detach)
	r.Get("/route-plans/{id}", routePlans.Get)
	r.Get("/shipments/{id}/route", shipments.Route)

	return r
}
