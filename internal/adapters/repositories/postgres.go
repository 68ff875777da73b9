package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"consolidation-route-service/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Postgres implements ports.Store on database/sql with the pgx driver.
// Coordinates are stored as NUMERIC(10,6).
type Postgres struct{ DB *sql.DB }

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{DB: db}
}

func coordsToDecimals(p *domain.Point) (lat, lon decimal.NullDecimal) {
	if p == nil {
		return lat, lon
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(p.Lat)), decimal.NewNullDecimal(decimal.NewFromFloat(p.Lon))
}

func decimalsToCoords(lat, lon decimal.NullDecimal) *domain.Point {
	if !lat.Valid || !lon.Valid {
		return nil
	}
	return &domain.Point{Lat: lat.Decimal.InexactFloat64(), Lon: lon.Decimal.InexactFloat64()}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}

// nullJSON maps an empty document to SQL NULL.
func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func notFound(op string, id uuid.UUID, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", op, id, domain.ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, id, err)
}

func (s *Postgres) GetAddress(ctx context.Context, id uuid.UUID) (domain.Address, error) {
	var (
		a        domain.Address
		lat, lon decimal.NullDecimal
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, lat, lon FROM addresses WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &lat, &lon)
	if err != nil {
		return domain.Address{}, notFound("get address", id, err)
	}
	a.Point = decimalsToCoords(lat, lon)
	return a, nil
}

func (s *Postgres) GetWarehouse(ctx context.Context, id uuid.UUID) (domain.Warehouse, error) {
	var (
		w        domain.Warehouse
		lat, lon decimal.NullDecimal
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, code, name, lat, lon FROM warehouses WHERE id = $1`, id,
	).Scan(&w.ID, &w.Code, &w.Name, &lat, &lon)
	if err != nil {
		return domain.Warehouse{}, notFound("get warehouse", id, err)
	}
	w.Point = decimalsToCoords(lat, lon)
	return w, nil
}

func (s *Postgres) GetShipment(ctx context.Context, id uuid.UUID) (domain.Shipment, error) {
	var (
		sh         domain.Shipment
		pLat, pLon decimal.NullDecimal
		dLat, dLon decimal.NullDecimal
	)
	err := s.DB.QueryRowContext(ctx, `
	SELECT id, tracking_number, pickup_lat, pickup_lon, delivery_lat, delivery_lon
	FROM shipments
	WHERE id = $1`, id,
	).Scan(&sh.ID, &sh.TrackingNumber, &pLat, &pLon, &dLat, &dLon)
	if err != nil {
		return domain.Shipment{}, notFound("get shipment", id, err)
	}
	sh.PickupPoint = decimalsToCoords(pLat, pLon)
	sh.DeliveryPoint = decimalsToCoords(dLat, dLon)
	return sh, nil
}

func (s *Postgres) GetDriver(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	var (
		d        domain.Driver
		lat, lon decimal.NullDecimal
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, current_lat, current_lon FROM drivers WHERE id = $1`, id,
	).Scan(&d.ID, &lat, &lon)
	if err != nil {
		return domain.Driver{}, notFound("get driver", id, err)
	}
	d.CurrentPoint = decimalsToCoords(lat, lon)
	return d, nil
}

func (s *Postgres) CreateConsolidation(ctx context.Context, c *domain.Consolidation) error {
	id := uuid.New()
	oLat, oLon := coordsToDecimals(c.Origin)
	dLat, dLon := coordsToDecimals(c.Destination)

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO consolidations (
		id, status, policy,
		origin_address_id, dest_address_id,
		origin_lat, origin_lon, dest_lat, dest_lon,
		aggregated_weight, aggregated_volume,
		organization_id, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, string(c.Status), string(c.Policy),
		nullUUID(c.OriginAddressID), nullUUID(c.DestAddressID),
		oLat, oLon, dLat, dLon,
		c.AggregatedWeight, c.AggregatedVolume,
		nullUUID(c.OrganizationID), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create consolidation: %w", err)
	}

	c.ID = id
	return nil
}

func (s *Postgres) AttachShipment(ctx context.Context, consolidationID, shipmentID uuid.UUID) error {
	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO consolidation_items (consolidation_id, shipment_id)
	VALUES ($1, $2)
	ON CONFLICT DO NOTHING`, consolidationID, shipmentID)
	if err != nil {
		return fmt.Errorf("attach shipment %s to %s: %w", shipmentID, consolidationID, err)
	}
	return nil
}

func (s *Postgres) DetachShipment(ctx context.Context, consolidationID, shipmentID uuid.UUID) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM consolidations WHERE id = $1)`, consolidationID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("detach shipment %s from %s: %w", shipmentID, consolidationID, err)
	}
	if !exists {
		return notFound("detach shipment: consolidation", consolidationID, sql.ErrNoRows)
	}

	_, err = s.DB.ExecContext(ctx, `
	DELETE FROM consolidation_items
	WHERE consolidation_id = $1 AND shipment_id = $2`, consolidationID, shipmentID)
	if err != nil {
		return fmt.Errorf("detach shipment %s from %s: %w", shipmentID, consolidationID, err)
	}
	return nil
}

func (s *Postgres) ListConsolidations(ctx context.Context) ([]domain.Consolidation, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		id, status, policy,
		origin_address_id, dest_address_id,
		origin_lat, origin_lon, dest_lat, dest_lon,
		aggregated_weight, aggregated_volume,
		organization_id, created_at
	FROM consolidations
	ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list consolidations: query: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Consolidation, 0, 16)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			c                      domain.Consolidation
			status, policy         string
			originAddr, destAddr   uuid.NullUUID
			oLat, oLon, dLat, dLon decimal.NullDecimal
			org                    uuid.NullUUID
		)
		if err := rows.Scan(
			&c.ID, &status, &policy,
			&originAddr, &destAddr,
			&oLat, &oLon, &dLat, &dLon,
			&c.AggregatedWeight, &c.AggregatedVolume,
			&org, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("list consolidations: scan row: %w", err)
		}
		c.Status = domain.ConsolidationStatus(status)
		c.Policy = domain.ConsolidationPolicy(policy)
		c.OriginAddressID = uuidPtr(originAddr)
		c.DestAddressID = uuidPtr(destAddr)
		c.Origin = decimalsToCoords(oLat, oLon)
		c.Destination = decimalsToCoords(dLat, dLon)
		c.OrganizationID = uuidPtr(org)

		index[c.ID] = len(out)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list consolidations: row iteration: %w", err)
	}

	items, err := s.DB.QueryContext(ctx, `
	SELECT consolidation_id, shipment_id
	FROM consolidation_items
	ORDER BY consolidation_id, shipment_id`)
	if err != nil {
		return nil, fmt.Errorf("list consolidations: query items: %w", err)
	}
	defer items.Close()

	for items.Next() {
		var consID, shipID uuid.UUID
		if err := items.Scan(&consID, &shipID); err != nil {
			return nil, fmt.Errorf("list consolidations: scan item: %w", err)
		}
		if i, ok := index[consID]; ok {
			out[i].ShipmentIDs = append(out[i].ShipmentIDs, shipID)
		}
	}
	if err := items.Err(); err != nil {
		return nil, fmt.Errorf("list consolidations: item iteration: %w", err)
	}

	return out, nil
}

func (s *Postgres) CreateRoutePlan(ctx context.Context, p *domain.RoutePlan) error {
	id := uuid.New()
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO route_plans (
		id, consolidation_id, name,
		vehicle_id, driver_id, organization_id,
		route_status, stops, solver_meta,
		created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, p.ConsolidationID, p.Name,
		nullUUID(p.VehicleID), nullUUID(p.DriverID), nullUUID(p.OrganizationID),
		string(p.RouteStatus), nullJSON(p.Stops), nullJSON(p.SolverMeta),
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create route plan: %w", err)
	}

	p.ID = id
	return nil
}

func (s *Postgres) UpdateRoutePlan(ctx context.Context, p *domain.RoutePlan) error {
	res, err := s.DB.ExecContext(ctx, `
	UPDATE route_plans
	SET name = $2,
		vehicle_id = $3,
		driver_id = $4,
		organization_id = $5,
		route_status = $6,
		stops = $7,
		solver_meta = $8,
		updated_at = $9
	WHERE id = $1`,
		p.ID, p.Name,
		nullUUID(p.VehicleID), nullUUID(p.DriverID), nullUUID(p.OrganizationID),
		string(p.RouteStatus), nullJSON(p.Stops), nullJSON(p.SolverMeta),
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update route plan %s: %w", p.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update route plan %s: rows affected: %w", p.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update route plan %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Postgres) CreateRouteStop(ctx context.Context, st *domain.RouteStop) error {
	id := uuid.New()
	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO route_stops (
		id, route_plan_id, sequence,
		lat, lon, stop_type,
		shipment_id, warehouse_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, st.RoutePlanID, st.Sequence,
		decimal.NewFromFloat(st.Lat), decimal.NewFromFloat(st.Lon), string(st.StopType),
		nullUUID(st.ShipmentID), nullUUID(st.WarehouseID),
	)
	if err != nil {
		return fmt.Errorf("create route stop seq=%d: %w", st.Sequence, err)
	}

	st.ID = id
	return nil
}

func (s *Postgres) GetRoutePlan(ctx context.Context, id uuid.UUID) (domain.RoutePlan, error) {
	var (
		p                    domain.RoutePlan
		vehicle, driver, org uuid.NullUUID
		status               string
		stops, meta          []byte
	)
	err := s.DB.QueryRowContext(ctx, `
	SELECT
		id, consolidation_id, name,
		vehicle_id, driver_id, organization_id,
		route_status, stops, solver_meta,
		created_at, updated_at
	FROM route_plans
	WHERE id = $1`, id,
	).Scan(
		&p.ID, &p.ConsolidationID, &p.Name,
		&vehicle, &driver, &org,
		&status, &stops, &meta,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.RoutePlan{}, notFound("get route plan", id, err)
	}

	p.VehicleID = uuidPtr(vehicle)
	p.DriverID = uuidPtr(driver)
	p.OrganizationID = uuidPtr(org)
	p.RouteStatus = domain.RouteStatus(status)
	p.Stops = stops
	p.SolverMeta = meta
	return p, nil
}

func (s *Postgres) ListRouteStops(ctx context.Context, routePlanID uuid.UUID) ([]domain.RouteStop, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, route_plan_id, sequence, lat, lon, stop_type, shipment_id, warehouse_id
	FROM route_stops
	WHERE route_plan_id = $1
	ORDER BY sequence ASC`, routePlanID)
	if err != nil {
		return nil, fmt.Errorf("list route stops: query: %w", err)
	}
	defer rows.Close()

	out := make([]domain.RouteStop, 0, 8)
	for rows.Next() {
		var (
			st                  domain.RouteStop
			lat, lon            decimal.Decimal
			stopType            string
			shipment, warehouse uuid.NullUUID
		)
		if err := rows.Scan(&st.ID, &st.RoutePlanID, &st.Sequence, &lat, &lon, &stopType, &shipment, &warehouse); err != nil {
			return nil, fmt.Errorf("list route stops: scan row: %w", err)
		}
		st.Lat = lat.InexactFloat64()
		st.Lon = lon.InexactFloat64()
		st.StopType = domain.StopType(stopType)
		st.ShipmentID = uuidPtr(shipment)
		st.WarehouseID = uuidPtr(warehouse)
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list route stops: row iteration: %w", err)
	}

	return out, nil
}
