package dto

import "time"

type PointRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PlanConsolidationRequest is the body of POST /consolidations/plan.
// Identifiers are strings so malformed values can be reported or skipped.
type PlanConsolidationRequest struct {
	OriginAddressID   string        `json:"originAddressId"`
	DestAddressID     string        `json:"destAddressId"`
	OriginWarehouseID string        `json:"originWarehouseId"`
	DestWarehouseID   string        `json:"destWarehouseId"`
	Origin            *PointRequest `json:"origin"`
	Destination       *PointRequest `json:"destination"`
	ShipmentIDs       []string      `json:"shipmentIds"`
	VehicleID         string        `json:"vehicleId"`
	DriverID          string        `json:"driverId"`
	OrganizationID    string        `json:"organizationId"`
}

type PlanConsolidationResponse struct {
	RoutePlanID string `json:"routePlanId"`
}

type PointResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type ConsolidationResponse struct {
	ID               string         `json:"id"`
	Status           string         `json:"status"`
	Policy           string         `json:"policy"`
	OriginAddressID  *string        `json:"originAddressId"`
	DestAddressID    *string        `json:"destAddressId"`
	Origin           *PointResponse `json:"origin"`
	Destination      *PointResponse `json:"destination"`
	AggregatedWeight string         `json:"aggregatedWeight"`
	AggregatedVolume string         `json:"aggregatedVolume"`
	OrganizationID   *string        `json:"organizationId"`
	ShipmentIDs      []string       `json:"shipmentIds"`
	CreatedAt        time.Time      `json:"createdAt"`
}

type ListConsolidationsResponse struct {
	Consolidations []ConsolidationResponse `json:"consolidations"`
}
