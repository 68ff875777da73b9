package domain

import "github.com/google/uuid"

// External reference data consumed read-only by the planner.
// A nil Point means the record carries no usable coordinates.

type Address struct {
	ID    uuid.UUID
	Name  string
	Point *Point
}

type Warehouse struct {
	ID    uuid.UUID
	Code  string
	Name  string
	Point *Point
}

type Shipment struct {
	ID             uuid.UUID
	TrackingNumber string
	PickupPoint    *Point
	DeliveryPoint  *Point
}

type Driver struct {
	ID           uuid.UUID
	CurrentPoint *Point
}

// Endpoint is a resolved origin or destination. AddressID is set when the
// endpoint came from an address record; Point is nil when it has no coordinates.
type Endpoint struct {
	AddressID   *uuid.UUID
	WarehouseID *uuid.UUID
	Point       *Point
}

// HasPoint reports whether the endpoint contributes a stop.
func (e *Endpoint) HasPoint() bool { return e != nil && e.Point != nil }
