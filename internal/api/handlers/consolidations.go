package handlers

import (
	"log/slog"
	"net/http"

	"consolidation-route-service/internal/api/dto"
	"consolidation-route-service/internal/domain"
	"consolidation-route-service/internal/ports"
	"consolidation-route-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ConsolidationHandler struct {
	Planner *services.Planner
	Repo    ports.ConsolidationRepository
	Logger  *slog.Logger
}

// Plan groups the requested shipments into a consolidation and returns the
// id of its route plan. Shipment ids that do not parse are skipped.
func (h *ConsolidationHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var body dto.PlanConsolidationRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req, err := toPlanRequest(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.Planner.PlanConsolidation(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.Logger, "plan consolidation", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.PlanConsolidationResponse{RoutePlanID: id.String()})
}

func toPlanRequest(body dto.PlanConsolidationRequest) (services.PlanRequest, error) {
	var (
		req services.PlanRequest
		err error
	)

	if req.Origin.AddressID, err = optionalUUID("originAddressId", body.OriginAddressID); err != nil {
		return req, err
	}
	if req.Origin.WarehouseID, err = optionalUUID("originWarehouseId", body.OriginWarehouseID); err != nil {
		return req, err
	}
	if req.Destination.AddressID, err = optionalUUID("destAddressId", body.DestAddressID); err != nil {
		return req, err
	}
	if req.Destination.WarehouseID, err = optionalUUID("destWarehouseId", body.DestWarehouseID); err != nil {
		return req, err
	}
	if req.VehicleID, err = optionalUUID("vehicleId", body.VehicleID); err != nil {
		return req, err
	}
	if req.DriverID, err = optionalUUID("driverId", body.DriverID); err != nil {
		return req, err
	}
	if req.OrganizationID, err = optionalUUID("organizationId", body.OrganizationID); err != nil {
		return req, err
	}

	if body.Origin != nil {
		req.Origin.Point = &domain.Point{Lat: body.Origin.Lat, Lon: body.Origin.Lon}
	}
	if body.Destination != nil {
		req.Destination.Point = &domain.Point{Lat: body.Destination.Lat, Lon: body.Destination.Lon}
	}

	req.ShipmentIDs = make([]uuid.UUID, 0, len(body.ShipmentIDs))
	for _, s := range body.ShipmentIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		req.ShipmentIDs = append(req.ShipmentIDs, id)
	}

	return req, nil
}

// Detach removes a shipment from a consolidation. Existing route plans are
// left untouched.
func (h *ConsolidationHandler) Detach(w http.ResponseWriter, r *http.Request) {
	consolidationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "id must be a UUID")
		return
	}
	shipmentID, err := uuid.Parse(chi.URLParam(r, "shipmentId"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "shipmentId must be a UUID")
		return
	}

	if err := h.Repo.DetachShipment(r.Context(), consolidationID, shipmentID); err != nil {
		writeServiceError(w, r, h.Logger, "detach shipment", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ConsolidationHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.ListConsolidations(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Logger, "list consolidations", err)
		return
	}

	res := dto.ListConsolidationsResponse{
		Consolidations: make([]dto.ConsolidationResponse, 0, len(list)),
	}
	for _, c := range list {
		item := dto.ConsolidationResponse{
			ID:               c.ID.String(),
			Status:           string(c.Status),
			Policy:           string(c.Policy),
			OriginAddressID:  uuidString(c.OriginAddressID),
			DestAddressID:    uuidString(c.DestAddressID),
			AggregatedWeight: c.AggregatedWeight.String(),
			AggregatedVolume: c.AggregatedVolume.String(),
			OrganizationID:   uuidString(c.OrganizationID),
			ShipmentIDs:      make([]string, 0, len(c.ShipmentIDs)),
			CreatedAt:        c.CreatedAt,
		}
		if c.Origin != nil {
			item.Origin = &dto.PointResponse{Lat: c.Origin.Lat, Lon: c.Origin.Lon}
		}
		if c.Destination != nil {
			item.Destination = &dto.PointResponse{Lat: c.Destination.Lat, Lon: c.Destination.Lon}
		}
		for _, id := range c.ShipmentIDs {
			item.ShipmentIDs = append(item.ShipmentIDs, id.String())
		}
		res.Consolidations = append(res.Consolidations, item)
	}

	writeJSON(w, r, http.StatusOK, res)
}
