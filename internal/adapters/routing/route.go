package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"consolidation-route-service/internal/domain"
	"consolidation-route-service/internal/platform/obs"
)

// GetRouteGeometry returns the road-following polyline through up to fifteen
// points in order. A response whose first path carries no coordinate list
// yields an empty slice.
func (g *GraphHopperClient) GetRouteGeometry(ctx context.Context, points []domain.Point) (_ []domain.Point, err error) {
	defer obs.Time(ctx, g.logger, "graphhopper.GetRouteGeometry")(&err)

	if !g.configured() {
		return nil, fmt.Errorf("get route geometry: %w", domain.ErrConfiguration)
	}

	if len(points) > maxRoutePoints {
		points = points[:maxRoutePoints]
	}

	q := url.Values{}
	q.Set("points_encoded", "false")
	q.Set("vehicle", vehicle)
	q.Set("locale", "en")
	q.Set("calc_points", "true")
	q.Set("key", g.apiKey)

	n := 0
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		q.Add("point", p.String())
		n++
	}
	if n < 2 {
		return nil, fmt.Errorf("get route geometry: need at least 2 valid points, got %d: %w", n, domain.ErrInvalidInput)
	}

	req, err := g.newRequest(ctx, http.MethodGet, g.baseURL+"/route?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("get route geometry: %w", err)
	}

	body, err := g.do("route", req)
	if err != nil {
		return nil, fmt.Errorf("get route geometry: %w", err)
	}

	coords, ok := routeCoordinates(body)
	if !ok {
		return []domain.Point{}, nil
	}

	out := make([]domain.Point, 0, len(coords))
	for i, c := range coords {
		if len(c) < 2 {
			continue
		}
		lon, lerr := coordinate(c[0])
		lat, aerr := coordinate(c[1])
		if lerr != nil || aerr != nil {
			return nil, fmt.Errorf("get route geometry: %w", &domain.ProviderError{
				Op:      "graphhopper.route",
				Message: fmt.Sprintf("decode coordinate %d", i),
				Err:     errors.Join(lerr, aerr),
			})
		}
		// GeoJSON order is [lon, lat(, elevation)].
		out = append(out, domain.Point{Lat: lat, Lon: lon})
	}

	return out, nil
}

// routeCoordinates walks paths[0].points.coordinates one level at a time.
// It reports false when any level is missing or has an unexpected shape,
// such as an encoded polyline string in place of the points object.
func routeCoordinates(body []byte) ([][]json.RawMessage, bool) {
	var root struct {
		Paths json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, false
	}

	var paths []json.RawMessage
	if err := json.Unmarshal(root.Paths, &paths); err != nil || len(paths) == 0 {
		return nil, false
	}

	var path struct {
		Points json.RawMessage `json:"points"`
	}
	if err := json.Unmarshal(paths[0], &path); err != nil {
		return nil, false
	}

	var points struct {
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(path.Points, &points); err != nil {
		return nil, false
	}

	var coords [][]json.RawMessage
	if err := json.Unmarshal(points.Coordinates, &coords); err != nil || len(coords) == 0 {
		return nil, false
	}
	return coords, true
}

// coordinate decodes one JSON number. null and non-numbers are errors.
func coordinate(raw json.RawMessage) (float64, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("coordinate %s is not a number", strings.TrimSpace(string(raw)))
	}
	return n.Float64()
}
