package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"consolidation-route-service/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SeedPoint is the JSON form of optional coordinates in a seed file.
type SeedPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type AddressSeed struct {
	ID    uuid.UUID  `json:"id"`
	Name  string     `json:"name"`
	Point *SeedPoint `json:"point,omitempty"`
}

type WarehouseSeed struct {
	ID    uuid.UUID  `json:"id"`
	Code  string     `json:"code"`
	Name  string     `json:"name"`
	Point *SeedPoint `json:"point,omitempty"`
}

type ShipmentSeed struct {
	ID             uuid.UUID  `json:"id"`
	TrackingNumber string     `json:"trackingNumber"`
	Pickup         *SeedPoint `json:"pickup,omitempty"`
	Delivery       *SeedPoint `json:"delivery,omitempty"`
}

type DriverSeed struct {
	ID      uuid.UUID  `json:"id"`
	Current *SeedPoint `json:"current,omitempty"`
}

// Seed is the reference data loaded by dbtool and the in-memory store.
type Seed struct {
	Addresses  []AddressSeed   `json:"addresses"`
	Warehouses []WarehouseSeed `json:"warehouses"`
	Shipments  []ShipmentSeed  `json:"shipments"`
	Drivers    []DriverSeed    `json:"drivers"`
}

func (p *SeedPoint) point() (*domain.Point, error) {
	if p == nil {
		return nil, nil
	}
	pt := domain.Point{Lat: p.Lat, Lon: p.Lon}
	if !pt.Valid() {
		return nil, fmt.Errorf("coordinates %s out of range", pt)
	}
	return &pt, nil
}

// LoadSeed reads and validates a seed file.
func LoadSeed(jsonPath string) (*Seed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load seed: parse json: %w", err)
	}

	if err := data.validate(); err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}

	return &data, nil
}

func (s *Seed) validate() error {
	for i, a := range s.Addresses {
		if a.ID == uuid.Nil {
			return fmt.Errorf("address at index %d: id is required", i+1)
		}
		if _, err := a.Point.point(); err != nil {
			return fmt.Errorf("address %s: %w", a.ID, err)
		}
	}
	for i, w := range s.Warehouses {
		if w.ID == uuid.Nil {
			return fmt.Errorf("warehouse at index %d: id is required", i+1)
		}
		if strings.TrimSpace(w.Code) == "" {
			return fmt.Errorf("warehouse %s: code cannot be empty", w.ID)
		}
		if _, err := w.Point.point(); err != nil {
			return fmt.Errorf("warehouse %s: %w", w.ID, err)
		}
	}
	for i, sh := range s.Shipments {
		if sh.ID == uuid.Nil {
			return fmt.Errorf("shipment at index %d: id is required", i+1)
		}
		if _, err := sh.Pickup.point(); err != nil {
			return fmt.Errorf("shipment %s pickup: %w", sh.ID, err)
		}
		if _, err := sh.Delivery.point(); err != nil {
			return fmt.Errorf("shipment %s delivery: %w", sh.ID, err)
		}
	}
	for i, d := range s.Drivers {
		if d.ID == uuid.Nil {
			return fmt.Errorf("driver at index %d: id is required", i+1)
		}
		if _, err := d.Current.point(); err != nil {
			return fmt.Errorf("driver %s: %w", d.ID, err)
		}
	}
	return nil
}

// SeedMemory loads validated seed data into an in-memory store.
func SeedMemory(m *Memory, s *Seed) {
	for _, a := range s.Addresses {
		pt, _ := a.Point.point()
		m.PutAddress(domain.Address{ID: a.ID, Name: a.Name, Point: pt})
	}
	for _, w := range s.Warehouses {
		pt, _ := w.Point.point()
		m.PutWarehouse(domain.Warehouse{ID: w.ID, Code: w.Code, Name: w.Name, Point: pt})
	}
	for _, sh := range s.Shipments {
		pickup, _ := sh.Pickup.point()
		delivery, _ := sh.Delivery.point()
		m.PutShipment(domain.Shipment{ID: sh.ID, TrackingNumber: sh.TrackingNumber, PickupPoint: pickup, DeliveryPoint: delivery})
	}
	for _, d := range s.Drivers {
		pt, _ := d.Current.point()
		m.PutDriver(domain.Driver{ID: d.ID, CurrentPoint: pt})
	}
}

func seedDecimals(p *SeedPoint) (lat, lon decimal.NullDecimal) {
	pt, _ := p.point()
	return coordsToDecimals(pt)
}

// SeedPostgres upserts validated seed data in a single transaction.
func SeedPostgres(ctx context.Context, db *sql.DB, s *Seed) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, a := range s.Addresses {
		lat, lon := seedDecimals(a.Point)
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO addresses (id, name, lat, lon)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, lat = EXCLUDED.lat, lon = EXCLUDED.lon`,
			a.ID, a.Name, lat, lon); err != nil {
			return fmt.Errorf("seed: insert address %s: %w", a.ID, err)
		}
	}

	for _, w := range s.Warehouses {
		lat, lon := seedDecimals(w.Point)
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO warehouses (id, code, name, lat, lon)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name, lat = EXCLUDED.lat, lon = EXCLUDED.lon`,
			w.ID, w.Code, w.Name, lat, lon); err != nil {
			return fmt.Errorf("seed: insert warehouse %s: %w", w.ID, err)
		}
	}

	for _, sh := range s.Shipments {
		pLat, pLon := seedDecimals(sh.Pickup)
		dLat, dLon := seedDecimals(sh.Delivery)
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO shipments (id, tracking_number, pickup_lat, pickup_lon, delivery_lat, delivery_lon)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			tracking_number = EXCLUDED.tracking_number,
			pickup_lat = EXCLUDED.pickup_lat,
			pickup_lon = EXCLUDED.pickup_lon,
			delivery_lat = EXCLUDED.delivery_lat,
			delivery_lon = EXCLUDED.delivery_lon`,
			sh.ID, sh.TrackingNumber, pLat, pLon, dLat, dLon); err != nil {
			return fmt.Errorf("seed: insert shipment %s: %w", sh.ID, err)
		}
	}

	for _, d := range s.Drivers {
		lat, lon := seedDecimals(d.Current)
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO drivers (id, current_lat, current_lon)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET current_lat = EXCLUDED.current_lat, current_lon = EXCLUDED.current_lon`,
			d.ID, lat, lon); err != nil {
			return fmt.Errorf("seed: insert driver %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
