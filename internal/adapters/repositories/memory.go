package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"consolidation-route-service/internal/domain"

	"github.com/google/uuid"
)

// Memory is an in-process ports.Store used when no DATABASE_URL is set.
type Memory struct {
	mu sync.Mutex

	addresses  map[uuid.UUID]domain.Address
	warehouses map[uuid.UUID]domain.Warehouse
	shipments  map[uuid.UUID]domain.Shipment
	drivers    map[uuid.UUID]domain.Driver

	consolidations map[uuid.UUID]domain.Consolidation
	consOrder      []uuid.UUID

	plans map[uuid.UUID]domain.RoutePlan
	stops map[uuid.UUID][]domain.RouteStop // route plan id -> stops
}

func NewMemory() *Memory {
	return &Memory{
		addresses:      map[uuid.UUID]domain.Address{},
		warehouses:     map[uuid.UUID]domain.Warehouse{},
		shipments:      map[uuid.UUID]domain.Shipment{},
		drivers:        map[uuid.UUID]domain.Driver{},
		consolidations: map[uuid.UUID]domain.Consolidation{},
		plans:          map[uuid.UUID]domain.RoutePlan{},
		stops:          map[uuid.UUID][]domain.RouteStop{},
	}
}

// Reference data loaders. A zero ID is replaced with a new one.

func (m *Memory) PutAddress(a domain.Address) domain.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.addresses[a.ID] = a
	return a
}

func (m *Memory) PutWarehouse(w domain.Warehouse) domain.Warehouse {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	m.warehouses[w.ID] = w
	return w
}

func (m *Memory) PutShipment(s domain.Shipment) domain.Shipment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.shipments[s.ID] = s
	return s
}

func (m *Memory) PutDriver(d domain.Driver) domain.Driver {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.drivers[d.ID] = d
	return d
}

func (m *Memory) GetAddress(ctx context.Context, id uuid.UUID) (domain.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.addresses[id]
	if !ok {
		return domain.Address{}, fmt.Errorf("get address %s: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

func (m *Memory) GetWarehouse(ctx context.Context, id uuid.UUID) (domain.Warehouse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.warehouses[id]
	if !ok {
		return domain.Warehouse{}, fmt.Errorf("get warehouse %s: %w", id, domain.ErrNotFound)
	}
	return w, nil
}

func (m *Memory) GetShipment(ctx context.Context, id uuid.UUID) (domain.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shipments[id]
	if !ok {
		return domain.Shipment{}, fmt.Errorf("get shipment %s: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

func (m *Memory) GetDriver(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[id]
	if !ok {
		return domain.Driver{}, fmt.Errorf("get driver %s: %w", id, domain.ErrNotFound)
	}
	return d, nil
}

func (m *Memory) CreateConsolidation(ctx context.Context, c *domain.Consolidation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	stored := *c
	stored.ShipmentIDs = append([]uuid.UUID(nil), c.ShipmentIDs...)
	m.consolidations[c.ID] = stored
	m.consOrder = append(m.consOrder, c.ID)
	return nil
}

func (m *Memory) AttachShipment(ctx context.Context, consolidationID, shipmentID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.consolidations[consolidationID]
	if !ok {
		return fmt.Errorf("attach shipment: consolidation %s: %w", consolidationID, domain.ErrNotFound)
	}
	if _, ok := m.shipments[shipmentID]; !ok {
		return fmt.Errorf("attach shipment: shipment %s: %w", shipmentID, domain.ErrNotFound)
	}
	if err := c.Attach(shipmentID); err != nil {
		return err
	}
	m.consolidations[consolidationID] = c
	return nil
}

func (m *Memory) DetachShipment(ctx context.Context, consolidationID, shipmentID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.consolidations[consolidationID]
	if !ok {
		return fmt.Errorf("detach shipment: consolidation %s: %w", consolidationID, domain.ErrNotFound)
	}
	c.Detach(shipmentID)
	m.consolidations[consolidationID] = c
	return nil
}

func (m *Memory) ListConsolidations(ctx context.Context) ([]domain.Consolidation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Consolidation, 0, len(m.consOrder))
	for _, id := range m.consOrder {
		c := m.consolidations[id]
		c.ShipmentIDs = append([]uuid.UUID(nil), c.ShipmentIDs...)
		out = append(out, c)
	}
	return out, nil
}

func (m *Memory) CreateRoutePlan(ctx context.Context, p *domain.RoutePlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.consolidations[p.ConsolidationID]; !ok {
		return fmt.Errorf("create route plan: consolidation %s: %w", p.ConsolidationID, domain.ErrNotFound)
	}
	p.ID = uuid.New()
	m.plans[p.ID] = *p
	return nil
}

func (m *Memory) UpdateRoutePlan(ctx context.Context, p *domain.RoutePlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[p.ID]; !ok {
		return fmt.Errorf("update route plan %s: %w", p.ID, domain.ErrNotFound)
	}
	m.plans[p.ID] = *p
	return nil
}

func (m *Memory) CreateRouteStop(ctx context.Context, s *domain.RouteStop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[s.RoutePlanID]; !ok {
		return fmt.Errorf("create route stop: route plan %s: %w", s.RoutePlanID, domain.ErrNotFound)
	}
	for _, existing := range m.stops[s.RoutePlanID] {
		if existing.Sequence == s.Sequence {
			return fmt.Errorf("create route stop: sequence %d already used in plan %s", s.Sequence, s.RoutePlanID)
		}
	}
	s.ID = uuid.New()
	m.stops[s.RoutePlanID] = append(m.stops[s.RoutePlanID], *s)
	return nil
}

func (m *Memory) GetRoutePlan(ctx context.Context, id uuid.UUID) (domain.RoutePlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return domain.RoutePlan{}, fmt.Errorf("get route plan %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (m *Memory) ListRouteStops(ctx context.Context, routePlanID uuid.UUID) ([]domain.RouteStop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.RouteStop, 0, len(m.stops[routePlanID]))
	out = append(out, m.stops[routePlanID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}
