package services

import (
	"context"
	"fmt"

	"consolidation-route-service/internal/domain"
	"consolidation-route-service/internal/platform/obs"

	"github.com/google/uuid"
)

// ShipmentRoute returns the road geometry for a single shipment: from the
// driver's current position (when known) to pickup, then to delivery.
//
// The shipment must carry both pickup and delivery coordinates. Provider
// failures are returned to the caller.
func (p *Planner) ShipmentRoute(ctx context.Context, shipmentID uuid.UUID, driverID *uuid.UUID) (_ []domain.Point, err error) {
	defer obs.Time(ctx, p.logger, "planner.ShipmentRoute")(&err)

	shipment, err := p.store.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("shipment route: shipment %s: %w", shipmentID, err)
	}

	if shipment.PickupPoint == nil || shipment.DeliveryPoint == nil {
		return nil, fmt.Errorf("shipment route: shipment %s lacks pickup or delivery coordinates: %w", shipmentID, domain.ErrInvalidInput)
	}

	points := make([]domain.Point, 0, 3)
	if driverID != nil {
		driver, err := p.store.GetDriver(ctx, *driverID)
		if err != nil {
			return nil, fmt.Errorf("shipment route: driver %s: %w", *driverID, err)
		}
		if driver.CurrentPoint != nil && driver.CurrentPoint.Valid() {
			points = append(points, *driver.CurrentPoint)
		}
	}
	points = append(points, *shipment.PickupPoint, *shipment.DeliveryPoint)

	if p.provider == nil {
		return nil, fmt.Errorf("shipment route: %w", domain.ErrConfiguration)
	}

	geometry, err := p.provider.GetRouteGeometry(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("shipment route: %w", err)
	}

	return geometry, nil
}
