package events

import (
	"context"
	"log/slog"

	"consolidation-route-service/internal/ports"
)

// LogPublisher writes events to the structured log when no broker is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) PublishRoutePlanned(ctx context.Context, evt ports.RoutePlannedEvent) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "event",
		"type", evt.Type,
		"route_plan_id", evt.RoutePlanID,
		"consolidation_id", evt.ConsolidationID,
		"stop_count", evt.StopCount,
		"has_matrix", evt.HasMatrix,
		"has_geometry", evt.HasGeometry,
	)
	return nil
}
