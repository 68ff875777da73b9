package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type RouteStatus string

const (
	RouteStatusPlanned    RouteStatus = "PLANNED"
	RouteStatusDispatched RouteStatus = "DISPATCHED"
	RouteStatusInProgress RouteStatus = "IN_PROGRESS"
	RouteStatusCompleted  RouteStatus = "COMPLETED"
	RouteStatusCancelled  RouteStatus = "CANCELLED"
)

type StopType string

const (
	StopTypeOrigin      StopType = "ORIGIN"
	StopTypeDelivery    StopType = "DELIVERY"
	StopTypeDestination StopType = "DESTINATION"
)

// Represents the planned route for a consolidation.
// A RoutePlan owns its RouteStops; Stops and SolverMeta hold the serialized
// JSON snapshots written at planning time. SolverMeta is nil when neither a
// matrix nor a geometry could be fetched.
type RoutePlan struct {
	ID              uuid.UUID
	ConsolidationID uuid.UUID
	Name            string
	VehicleID       *uuid.UUID
	DriverID        *uuid.UUID
	OrganizationID  *uuid.UUID
	RouteStatus     RouteStatus
	Stops           []byte
	SolverMeta      []byte
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Represents one position in a route plan's visiting order.
// Sequence is 0-based and gap-free within a plan.
type RouteStop struct {
	ID          uuid.UUID
	RoutePlanID uuid.UUID
	Sequence    int
	Lat         float64
	Lon         float64
	StopType    StopType
	ShipmentID  *uuid.UUID
	WarehouseID *uuid.UUID
}

func (s RouteStop) Point() Point { return Point{Lat: s.Lat, Lon: s.Lon} }

// SolverMeta is the JSON document stored on RoutePlan.SolverMeta.
type SolverMeta struct {
	Matrix   json.RawMessage `json:"matrix,omitempty"`
	Geometry []GeoPoint      `json:"geometry,omitempty"`
}

// Empty reports whether neither the matrix nor the geometry is present.
func (m SolverMeta) Empty() bool { return len(m.Matrix) == 0 && len(m.Geometry) == 0 }

// GeoPoint is the JSON form of a Point inside serialized plan data.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// StopSnapshot is one element of the serialized RoutePlan.Stops list.
type StopSnapshot struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Sequence int     `json:"sequence"`
}
