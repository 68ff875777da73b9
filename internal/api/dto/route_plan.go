package dto

import (
	"encoding/json"
	"time"
)

type RouteStopResponse struct {
	ID          string  `json:"id"`
	Sequence    int     `json:"sequence"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	StopType    string  `json:"stopType"`
	ShipmentID  *string `json:"shipmentId"`
	WarehouseID *string `json:"warehouseId"`
}

type RoutePlanResponse struct {
	ID              string              `json:"id"`
	ConsolidationID string              `json:"consolidationId"`
	Name            string              `json:"name"`
	VehicleID       *string             `json:"vehicleId"`
	DriverID        *string             `json:"driverId"`
	OrganizationID  *string             `json:"organizationId"`
	RouteStatus     string              `json:"routeStatus"`
	Stops           []RouteStopResponse `json:"stops"`
	SolverMeta      json.RawMessage     `json:"solverMeta"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// ShipmentRouteResponse carries the polyline as [lat, lon] pairs.
type ShipmentRouteResponse struct {
	Geometry [][]float64 `json:"geometry"`
}
