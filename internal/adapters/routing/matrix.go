package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"consolidation-route-service/internal/domain"
	"consolidation-route-service/internal/platform/obs"
)

type matrixRequest struct {
	Points    [][]float64 `json:"points"`
	OutArrays []string    `json:"out_arrays"`
	Vehicle   string      `json:"vehicle"`
}

// GetMatrix returns the provider's raw travel-time/distance matrix for the
// first five points. Responses are cached per point list.
func (g *GraphHopperClient) GetMatrix(ctx context.Context, points []domain.Point) (_ json.RawMessage, err error) {
	defer obs.Time(ctx, g.logger, "graphhopper.GetMatrix")(&err)

	if !g.configured() {
		return nil, fmt.Errorf("get matrix: %w", domain.ErrConfiguration)
	}

	if len(points) > maxMatrixPoints {
		points = points[:maxMatrixPoints]
	}

	locations := make([][]float64, 0, len(points))
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		locations = append(locations, p.LatLon())
	}
	if len(locations) < 2 {
		return nil, fmt.Errorf("get matrix: need at least 2 valid points, got %d: %w", len(locations), domain.ErrInvalidInput)
	}

	key := "matrix:" + domain.CanonicalPoints(points)
	if body, ok := g.responses.Get(key); ok {
		return json.RawMessage(body), nil
	}

	payload, err := json.Marshal(matrixRequest{
		Points:    locations,
		OutArrays: []string{"times", "distances"},
		Vehicle:   vehicle,
	})
	if err != nil {
		return nil, fmt.Errorf("get matrix: marshal request: %w", err)
	}

	endpoint := g.baseURL + "/matrix?key=" + url.QueryEscape(g.apiKey)

	req, err := g.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("get matrix: %w", err)
	}

	body, err := g.do("matrix", req)
	if err != nil {
		return nil, fmt.Errorf("get matrix: %w", err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("get matrix: %w", &domain.ProviderError{
			Op:      "graphhopper.matrix",
			Message: "response is not valid JSON",
		})
	}

	g.responses.Put(key, body)

	return json.RawMessage(body), nil
}
