package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ConsolidationStatus string

const (
	ConsolidationOpen                ConsolidationStatus = "OPEN"
	ConsolidationSealed              ConsolidationStatus = "SEALED"
	ConsolidationDispatched          ConsolidationStatus = "DISPATCHED"
	ConsolidationReceivedAtWarehouse ConsolidationStatus = "RECEIVED_AT_WAREHOUSE"
	ConsolidationMerged              ConsolidationStatus = "MERGED"
	ConsolidationCancelled           ConsolidationStatus = "CANCELLED"
)

type ConsolidationPolicy string

const (
	PolicyAutoByWeight ConsolidationPolicy = "AUTO_BY_WEIGHT"
	PolicyAutoByRoute  ConsolidationPolicy = "AUTO_BY_ROUTE"
	PolicyManual       ConsolidationPolicy = "MANUAL"
)

// Consolidation groups shipments that move together between an origin and a
// destination. Aggregated weight and volume are maintained outside the planner.
type Consolidation struct {
	ID               uuid.UUID
	Status           ConsolidationStatus
	Policy           ConsolidationPolicy
	OriginAddressID  *uuid.UUID
	DestAddressID    *uuid.UUID
	Origin           *Point
	Destination      *Point
	AggregatedWeight decimal.Decimal
	AggregatedVolume decimal.Decimal
	OrganizationID   *uuid.UUID
	ShipmentIDs      []uuid.UUID
	CreatedAt        time.Time
}

// NewConsolidation returns an OPEN consolidation between the given endpoints.
// Either endpoint may be nil.
func NewConsolidation(origin, destination *Endpoint, organizationID *uuid.UUID, now time.Time) *Consolidation {
	c := &Consolidation{
		Status:         ConsolidationOpen,
		Policy:         PolicyAutoByWeight,
		OrganizationID: organizationID,
		CreatedAt:      now,
	}
	if origin != nil {
		c.OriginAddressID = origin.AddressID
		c.Origin = origin.Point
	}
	if destination != nil {
		c.DestAddressID = destination.AddressID
		c.Destination = destination.Point
	}
	return c
}

// Attach records a shipment on an OPEN consolidation. Attaching the same
// shipment twice is a no-op.
func (c *Consolidation) Attach(shipmentID uuid.UUID) error {
	if c.Status != ConsolidationOpen {
		return fmt.Errorf("attach shipment: consolidation %s is %s", c.ID, c.Status)
	}
	for _, id := range c.ShipmentIDs {
		if id == shipmentID {
			return nil
		}
	}
	c.ShipmentIDs = append(c.ShipmentIDs, shipmentID)
	return nil
}

// Detach removes a shipment association if present.
func (c *Consolidation) Detach(shipmentID uuid.UUID) {
	out := c.ShipmentIDs[:0]
	for _, id := range c.ShipmentIDs {
		if id != shipmentID {
			out = append(out, id)
		}
	}
	c.ShipmentIDs = out
}
