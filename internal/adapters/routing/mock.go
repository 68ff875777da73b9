package routing

import (
	"context"
	"encoding/json"
	"sync"

	"consolidation-route-service/internal/domain"
)

// MockRoutingProvider is a scripted ports.RoutingProvider for local runs and tests.
// It records the point lists it was called with.
type MockRoutingProvider struct {
	Matrix      json.RawMessage
	Geometry    []domain.Point
	MatrixErr   error
	GeometryErr error

	mu            sync.Mutex
	MatrixCalls   [][]domain.Point
	GeometryCalls [][]domain.Point
}

func (m *MockRoutingProvider) GetMatrix(ctx context.Context, points []domain.Point) (json.RawMessage, error) {
	m.mu.Lock()
	m.MatrixCalls = append(m.MatrixCalls, append([]domain.Point(nil), points...))
	m.mu.Unlock()

	if m.MatrixErr != nil {
		return nil, m.MatrixErr
	}
	return m.Matrix, nil
}

func (m *MockRoutingProvider) GetRouteGeometry(ctx context.Context, points []domain.Point) ([]domain.Point, error) {
	m.mu.Lock()
	m.GeometryCalls = append(m.GeometryCalls, append([]domain.Point(nil), points...))
	m.mu.Unlock()

	if m.GeometryErr != nil {
		return nil, m.GeometryErr
	}
	return m.Geometry, nil
}

// Calls returns how many matrix and geometry requests were made.
func (m *MockRoutingProvider) Calls() (matrix, geometry int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.MatrixCalls), len(m.GeometryCalls)
}
