package handlers

import (
	"log/slog"
	"net/http"

	"consolidation-route-service/internal/api/dto"
	"consolidation-route-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ShipmentHandler struct {
	Planner *services.Planner
	Logger  *slog.Logger
}

// Route returns the road geometry from the driver (optional) through the
// shipment's pickup to its delivery.
func (h *ShipmentHandler) Route(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "id must be a UUID")
		return
	}

	driverID, err := optionalUUID("driverId", r.URL.Query().Get("driverId"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	geometry, err := h.Planner.ShipmentRoute(r.Context(), id, driverID)
	if err != nil {
		writeServiceError(w, r, h.Logger, "shipment route", err)
		return
	}

	res := dto.ShipmentRouteResponse{Geometry: make([][]float64, 0, len(geometry))}
	for _, p := range geometry {
		res.Geometry = append(res.Geometry, p.LatLon())
	}

	writeJSON(w, r, http.StatusOK, res)
}
