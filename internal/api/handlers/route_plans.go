package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"consolidation-route-service/internal/api/dto"
	"consolidation-route-service/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type RoutePlanHandler struct {
	Repo   ports.RoutePlanRepository
	Logger *slog.Logger
}

// Get returns a route plan with its stops in visiting order.
func (h *RoutePlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "id must be a UUID")
		return
	}

	plan, err := h.Repo.GetRoutePlan(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.Logger, "get route plan", err)
		return
	}

	stops, err := h.Repo.ListRouteStops(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.Logger, "list route stops", err)
		return
	}

	res := dto.RoutePlanResponse{
		ID:              plan.ID.String(),
		ConsolidationID: plan.ConsolidationID.String(),
		Name:            plan.Name,
		VehicleID:       uuidString(plan.VehicleID),
		DriverID:        uuidString(plan.DriverID),
		OrganizationID:  uuidString(plan.OrganizationID),
		RouteStatus:     string(plan.RouteStatus),
		Stops:           make([]dto.RouteStopResponse, 0, len(stops)),
		CreatedAt:       plan.CreatedAt,
		UpdatedAt:       plan.UpdatedAt,
	}
	if len(plan.SolverMeta) > 0 {
		res.SolverMeta = json.RawMessage(plan.SolverMeta)
	}
	for _, s := range stops {
		res.Stops = append(res.Stops, dto.RouteStopResponse{
			ID:          s.ID.String(),
			Sequence:    s.Sequence,
			Lat:         s.Lat,
			Lon:         s.Lon,
			StopType:    string(s.StopType),
			ShipmentID:  uuidString(s.ShipmentID),
			WarehouseID: uuidString(s.WarehouseID),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
