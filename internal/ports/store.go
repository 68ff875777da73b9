package ports

import (
	"context"

	"consolidation-route-service/internal/domain"

	"github.com/google/uuid"
)

// Port: read-only lookups of reference data owned by the admin backend.
// Lookups return domain.ErrNotFound for unknown ids.
type LocationRepository interface {
	GetAddress(ctx context.Context, id uuid.UUID) (domain.Address, error)
	GetWarehouse(ctx context.Context, id uuid.UUID) (domain.Warehouse, error)
	GetShipment(ctx context.Context, id uuid.UUID) (domain.Shipment, error)
	GetDriver(ctx context.Context, id uuid.UUID) (domain.Driver, error)
}

// Port: consolidation persistence. Create assigns the ID.
// Detaching a shipment that is not attached is a no-op.
type ConsolidationRepository interface {
	CreateConsolidation(ctx context.Context, c *domain.Consolidation) error
	AttachShipment(ctx context.Context, consolidationID, shipmentID uuid.UUID) error
	DetachShipment(ctx context.Context, consolidationID, shipmentID uuid.UUID) error
	ListConsolidations(ctx context.Context) ([]domain.Consolidation, error)
}

// Port: route plan persistence. Create assigns IDs and timestamps;
// ListRouteStops returns stops ordered by sequence ascending.
type RoutePlanRepository interface {
	CreateRoutePlan(ctx context.Context, p *domain.RoutePlan) error
	UpdateRoutePlan(ctx context.Context, p *domain.RoutePlan) error
	CreateRouteStop(ctx context.Context, s *domain.RouteStop) error
	GetRoutePlan(ctx context.Context, id uuid.UUID) (domain.RoutePlan, error)
	ListRouteStops(ctx context.Context, routePlanID uuid.UUID) ([]domain.RouteStop, error)
}

// Store bundles every repository the planner and API need.
type Store interface {
	LocationRepository
	ConsolidationRepository
	RoutePlanRepository
}
