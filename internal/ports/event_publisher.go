package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const EventRoutePlanned = "route_plan.planned"

// RoutePlannedEvent is emitted after a route plan and its stops are persisted.
type RoutePlannedEvent struct {
	Type            string    `json:"type"`
	RoutePlanID     uuid.UUID `json:"routePlanId"`
	ConsolidationID uuid.UUID `json:"consolidationId"`
	StopCount       int       `json:"stopCount"`
	HasMatrix       bool      `json:"hasMatrix"`
	HasGeometry     bool      `json:"hasGeometry"`
	PlannedAt       time.Time `json:"plannedAt"`
}

// Contract for notifying downstream consumers about planning results.
type EventPublisher interface {
	PublishRoutePlanned(ctx context.Context, evt RoutePlannedEvent) error
}
