package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"consolidation-route-service/internal/domain"
	"consolidation-route-service/internal/platform/metrics"
	"consolidation-route-service/internal/platform/obs"
	"consolidation-route-service/internal/ports"

	"github.com/google/uuid"
)

// EndpointRequest names an origin or destination by raw coordinates, an
// address id or a warehouse id. AddressID takes precedence over WarehouseID,
// and both take precedence over Point.
type EndpointRequest struct {
	Point       *domain.Point
	AddressID   *uuid.UUID
	WarehouseID *uuid.UUID
}

func (e EndpointRequest) empty() bool {
	return e.Point == nil && e.AddressID == nil && e.WarehouseID == nil
}

type PlanRequest struct {
	Origin         EndpointRequest
	Destination    EndpointRequest
	ShipmentIDs    []uuid.UUID
	VehicleID      *uuid.UUID
	DriverID       *uuid.UUID
	OrganizationID *uuid.UUID
}

// Planner turns a set of shipments into a consolidation with a sequenced,
// persisted route plan.
type Planner struct {
	store     ports.Store
	provider  ports.RoutingProvider
	publisher ports.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewPlanner wires a planner. publisher may be nil.
func NewPlanner(store ports.Store, provider ports.RoutingProvider, publisher ports.EventPublisher, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		store:     store,
		provider:  provider,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// stopSource remembers where a point in the planning list came from.
type stopSource struct {
	point       domain.Point
	stopType    domain.StopType
	shipmentID  *uuid.UUID
	warehouseID *uuid.UUID
}

// PlanConsolidation creates a consolidation for the request's shipments,
// orders its stops, persists a route plan and returns the plan id.
//
// Routing data is best effort: provider, configuration and input failures
// leave the plan without a matrix or geometry. Persistence failures abort.
func (p *Planner) PlanConsolidation(ctx context.Context, req PlanRequest) (_ uuid.UUID, err error) {
	defer obs.Time(ctx, p.logger, "planner.PlanConsolidation")(&err)
	defer func() {
		if err != nil {
			metrics.Plans.WithLabelValues("error", "none").Inc()
		}
	}()

	origin, err := p.ResolveEndpoint(ctx, req.Origin)
	if err != nil {
		return uuid.Nil, fmt.Errorf("plan consolidation: resolve origin: %w", err)
	}
	destination, err := p.ResolveEndpoint(ctx, req.Destination)
	if err != nil {
		return uuid.Nil, fmt.Errorf("plan consolidation: resolve destination: %w", err)
	}

	cons := domain.NewConsolidation(origin, destination, req.OrganizationID, p.now())
	if err := p.store.CreateConsolidation(ctx, cons); err != nil {
		return uuid.Nil, fmt.Errorf("plan consolidation: create consolidation: %w", err)
	}

	sources := make([]stopSource, 0, len(req.ShipmentIDs)+2)
	if origin.HasPoint() {
		sources = append(sources, stopSource{
			point:       *origin.Point,
			stopType:    domain.StopTypeOrigin,
			warehouseID: origin.WarehouseID,
		})
	}

	seen := make(map[uuid.UUID]struct{}, len(req.ShipmentIDs))
	for _, id := range req.ShipmentIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		shipment, err := p.store.GetShipment(ctx, id)
		if err != nil {
			p.logger.WarnContext(ctx, "skipping unresolved shipment", "shipment_id", id, "error", err)
			continue
		}

		if err := cons.Attach(shipment.ID); err != nil {
			return uuid.Nil, fmt.Errorf("plan consolidation: %w", err)
		}
		if err := p.store.AttachShipment(ctx, cons.ID, shipment.ID); err != nil {
			return uuid.Nil, fmt.Errorf("plan consolidation: attach shipment %s: %w", shipment.ID, err)
		}

		if shipment.DeliveryPoint != nil && shipment.DeliveryPoint.Valid() {
			sid := shipment.ID
			sources = append(sources, stopSource{
				point:      *shipment.DeliveryPoint,
				stopType:   domain.StopTypeDelivery,
				shipmentID: &sid,
			})
		}
	}

	if destination.HasPoint() {
		sources = append(sources, stopSource{
			point:       *destination.Point,
			stopType:    domain.StopTypeDestination,
			warehouseID: destination.WarehouseID,
		})
	}

	points := make([]domain.Point, len(sources))
	for i, s := range sources {
		points[i] = s.point
	}
	order := SequenceStops(points)

	now := p.now()
	plan := &domain.RoutePlan{
		ConsolidationID: cons.ID,
		Name:            "Consolidation " + cons.ID.String(),
		VehicleID:       req.VehicleID,
		DriverID:        req.DriverID,
		OrganizationID:  req.OrganizationID,
		RouteStatus:     domain.RouteStatusPlanned,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := p.store.CreateRoutePlan(ctx, plan); err != nil {
		return uuid.Nil, fmt.Errorf("plan consolidation: create route plan: %w", err)
	}

	ordered := make([]domain.Point, 0, len(order))
	snapshot := make([]domain.StopSnapshot, 0, len(order))
	for seq, idx := range order {
		src := sources[idx]
		stop := &domain.RouteStop{
			RoutePlanID: plan.ID,
			Sequence:    seq,
			Lat:         src.point.Lat,
			Lon:         src.point.Lon,
			StopType:    src.stopType,
			ShipmentID:  src.shipmentID,
			WarehouseID: src.warehouseID,
		}
		if err := p.store.CreateRouteStop(ctx, stop); err != nil {
			return uuid.Nil, fmt.Errorf("plan consolidation: create stop %d: %w", seq, err)
		}

		ordered = append(ordered, src.point)
		snapshot = append(snapshot, domain.StopSnapshot{Lat: src.point.Lat, Lon: src.point.Lon, Sequence: seq})
	}

	meta, err := p.fetchSolverMeta(ctx, ordered)
	if err != nil {
		return uuid.Nil, fmt.Errorf("plan consolidation: %w", err)
	}

	plan.Stops, err = json.Marshal(snapshot)
	if err != nil {
		return uuid.Nil, fmt.Errorf("plan consolidation: marshal stops: %w", err)
	}
	plan.SolverMeta = nil
	if !meta.Empty() {
		plan.SolverMeta, err = json.Marshal(meta)
		if err != nil {
			return uuid.Nil, fmt.Errorf("plan consolidation: marshal solver meta: %w", err)
		}
	}
	plan.UpdatedAt = p.now()

	if err := p.store.UpdateRoutePlan(ctx, plan); err != nil {
		return uuid.Nil, fmt.Errorf("plan consolidation: update route plan: %w", err)
	}

	metaLabel := "none"
	switch {
	case len(meta.Matrix) > 0 && len(meta.Geometry) > 0:
		metaLabel = "full"
	case !meta.Empty():
		metaLabel = "partial"
	}
	metrics.Plans.WithLabelValues("ok", metaLabel).Inc()

	p.publish(ctx, ports.RoutePlannedEvent{
		Type:            ports.EventRoutePlanned,
		RoutePlanID:     plan.ID,
		ConsolidationID: cons.ID,
		StopCount:       len(order),
		HasMatrix:       len(meta.Matrix) > 0,
		HasGeometry:     len(meta.Geometry) > 0,
		PlannedAt:       plan.UpdatedAt,
	})

	p.logger.InfoContext(ctx, "route plan created",
		"route_plan_id", plan.ID,
		"consolidation_id", cons.ID,
		"stops", len(order),
		"meta", metaLabel,
	)

	return plan.ID, nil
}

// fetchSolverMeta requests the matrix and then the geometry for the ordered
// points. Fewer than two points skip the provider entirely.
func (p *Planner) fetchSolverMeta(ctx context.Context, ordered []domain.Point) (domain.SolverMeta, error) {
	var meta domain.SolverMeta
	if len(ordered) < 2 || p.provider == nil {
		return meta, nil
	}

	matrix, err := fetch(ctx, p.logger, "matrix", func() (json.RawMessage, error) {
		return p.provider.GetMatrix(ctx, ordered)
	})
	if err != nil {
		return meta, err
	}
	if matrix.ok {
		meta.Matrix = matrix.value
	}

	geometry, err := fetch(ctx, p.logger, "geometry", func() ([]domain.Point, error) {
		return p.provider.GetRouteGeometry(ctx, ordered)
	})
	if err != nil {
		return meta, err
	}
	if geometry.ok && len(geometry.value) > 0 {
		meta.Geometry = make([]domain.GeoPoint, 0, len(geometry.value))
		for _, pt := range geometry.value {
			meta.Geometry = append(meta.Geometry, domain.GeoPoint{Lat: pt.Lat, Lon: pt.Lon})
		}
	}

	return meta, nil
}

// ResolveEndpoint turns an endpoint request into coordinates. An empty request
// resolves to nil. Unknown addresses are ErrNotFound; unknown warehouses and
// warehouses without coordinates are ErrInvalidInput. An address without
// coordinates resolves to an endpoint with no point.
func (p *Planner) ResolveEndpoint(ctx context.Context, req EndpointRequest) (*domain.Endpoint, error) {
	switch {
	case req.empty():
		return nil, nil

	case req.AddressID != nil:
		addr, err := p.store.GetAddress(ctx, *req.AddressID)
		if err != nil {
			return nil, fmt.Errorf("address %s: %w", *req.AddressID, err)
		}
		id := addr.ID
		ep := &domain.Endpoint{AddressID: &id}
		if addr.Point != nil && addr.Point.Valid() {
			pt := *addr.Point
			ep.Point = &pt
		}
		return ep, nil

	case req.WarehouseID != nil:
		wh, err := p.store.GetWarehouse(ctx, *req.WarehouseID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("warehouse %s: %w", *req.WarehouseID, domain.ErrInvalidInput)
		}
		if err != nil {
			return nil, fmt.Errorf("warehouse %s: %w", *req.WarehouseID, err)
		}
		if wh.Point == nil || !wh.Point.Valid() {
			return nil, fmt.Errorf("warehouse %s has no coordinates: %w", wh.ID, domain.ErrInvalidInput)
		}
		id := wh.ID
		pt := *wh.Point
		return &domain.Endpoint{WarehouseID: &id, Point: &pt}, nil

	default:
		if !req.Point.Valid() {
			return nil, fmt.Errorf("coordinates %s out of range: %w", req.Point, domain.ErrInvalidInput)
		}
		pt := *req.Point
		return &domain.Endpoint{Point: &pt}, nil
	}
}

func (p *Planner) publish(ctx context.Context, evt ports.RoutePlannedEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishRoutePlanned(ctx, evt); err != nil {
		p.logger.WarnContext(ctx, "publish route plan event failed", "route_plan_id", evt.RoutePlanID, "error", err)
	}
}
