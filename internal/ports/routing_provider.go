package ports

import (
	"context"
	"encoding/json"

	"consolidation-route-service/internal/domain"
)

// Contract for the external routing service.
type RoutingProvider interface {
	// Return the provider's travel-time/distance matrix for the points, verbatim.
	GetMatrix(ctx context.Context, points []domain.Point) (json.RawMessage, error)
	// Return a road-following polyline through the points.
	GetRouteGeometry(ctx context.Context, points []domain.Point) ([]domain.Point, error)
}
