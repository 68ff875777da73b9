package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"consolidation-route-service/internal/adapters/cache"
	"consolidation-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matrixBody = `{"times":[[0,10],[10,0]],"distances":[[0,100],[100,0]]}`

func newTestClient(t *testing.T, apiKey string, h http.Handler) (*GraphHopperClient, *cache.ResponseCache) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	responses := cache.NewResponseCache(cache.DefaultCapacity)
	c := NewGraphHopperClient(Config{APIKey: apiKey, BaseURL: srv.URL}, responses, nil)
	return c, responses
}

func pts(n int) []domain.Point {
	out := make([]domain.Point, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Point{Lat: 40 + float64(i)*0.1, Lon: -74 - float64(i)*0.1})
	}
	return out
}

func TestGetMatrix_RequestShapeAndCaching(t *testing.T) {
	var calls atomic.Int32
	var got matrixRequest

	c, _ := newTestClient(t, "secret", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/matrix", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		b, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(b, &got))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, matrixBody)
	}))

	ctx := context.Background()
	points := []domain.Point{{Lat: 40, Lon: -74}, {Lat: 40.3, Lon: -74.3}}

	body, err := c.GetMatrix(ctx, points)
	require.NoError(t, err)
	assert.JSONEq(t, matrixBody, string(body))

	assert.Equal(t, [][]float64{{40, -74}, {40.3, -74.3}}, got.Points)
	assert.Equal(t, []string{"times", "distances"}, got.OutArrays)
	assert.Equal(t, "car", got.Vehicle)

	again, err := c.GetMatrix(ctx, points)
	require.NoError(t, err)
	assert.JSONEq(t, matrixBody, string(again))
	assert.Equal(t, int32(1), calls.Load(), "second identical call must be served from cache")
}

func TestGetMatrix_TruncatesToFivePoints(t *testing.T) {
	var calls, sent atomic.Int32

	c, responses := newTestClient(t, "k", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req matrixRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		sent.Store(int32(len(req.Points)))
		fmt.Fprint(w, matrixBody)
	}))

	ctx := context.Background()
	six := pts(6)

	_, err := c.GetMatrix(ctx, six)
	require.NoError(t, err)
	assert.Equal(t, int32(5), sent.Load())

	// The first five of the six points map to the same cache entry.
	_, err = c.GetMatrix(ctx, six[:5])
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, responses.Len())
}

func TestGetMatrix_EvictsOldestAfterCapacity(t *testing.T) {
	var calls atomic.Int32

	c, responses := newTestClient(t, "k", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, matrixBody)
	}))

	ctx := context.Background()
	pair := func(i int) []domain.Point {
		return []domain.Point{{Lat: 10, Lon: float64(i) * 0.01}, {Lat: 11, Lon: 0}}
	}

	for i := 0; i < 101; i++ {
		_, err := c.GetMatrix(ctx, pair(i))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(101), calls.Load())
	assert.Equal(t, 100, responses.Len())

	// Newest entries are still cached.
	_, err := c.GetMatrix(ctx, pair(100))
	require.NoError(t, err)
	assert.Equal(t, int32(101), calls.Load())

	// The first key was evicted and is fetched again.
	_, err = c.GetMatrix(ctx, pair(0))
	require.NoError(t, err)
	assert.Equal(t, int32(102), calls.Load())
}

func TestGetMatrix_MissingAPIKey(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	_, err := c.GetMatrix(context.Background(), pts(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, int32(0), calls.Load())
}

func TestGetMatrix_TooFewPoints(t *testing.T) {
	c, _ := newTestClient(t, "k", http.NotFoundHandler())

	_, err := c.GetMatrix(context.Background(), pts(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = c.GetMatrix(context.Background(), []domain.Point{{Lat: 1, Lon: 1}, {Lat: 200, Lon: 0}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetMatrix_UpstreamErrorNotCached(t *testing.T) {
	var calls atomic.Int32
	c, responses := newTestClient(t, "k", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Wrong credentials. Register and get a valid API key"}`)
	}))

	_, err := c.GetMatrix(context.Background(), pts(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)

	var pe *domain.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.Contains(t, pe.Message, "Wrong credentials")

	assert.Equal(t, 0, responses.Len())
	assert.Equal(t, int32(1), calls.Load(), "provider calls are not retried")
}

func TestGetMatrix_InvalidJSON(t *testing.T) {
	c, responses := newTestClient(t, "k", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>oops</html>")
	}))

	_, err := c.GetMatrix(context.Background(), pts(2))
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Equal(t, 0, responses.Len())
}

func TestGetRouteGeometry_FlipsCoordinates(t *testing.T) {
	var calls atomic.Int32
	c, responses := newTestClient(t, "k", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/route", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, []string{"37.77,-122.42", "37.8,-122.4"}, q["point"])
		assert.Equal(t, "false", q.Get("points_encoded"))
		assert.Equal(t, "true", q.Get("calc_points"))
		assert.Equal(t, "car", q.Get("vehicle"))
		assert.Equal(t, "en", q.Get("locale"))
		assert.Equal(t, "k", q.Get("key"))

		fmt.Fprint(w, `{"paths":[{"points":{"type":"LineString","coordinates":[[-122.42,37.77],[-122.4,37.8]]}}]}`)
	}))

	points := []domain.Point{{Lat: 37.77, Lon: -122.42}, {Lat: 37.8, Lon: -122.4}}

	geo, err := c.GetRouteGeometry(context.Background(), points)
	require.NoError(t, err)
	assert.Equal(t, []domain.Point{{Lat: 37.77, Lon: -122.42}, {Lat: 37.8, Lon: -122.4}}, geo)

	_, err = c.GetRouteGeometry(context.Background(), points)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "geometry is not cached")
	assert.Equal(t, 0, responses.Len())
}

func TestGetRouteGeometry_CapsPoints(t *testing.T) {
	var sent atomic.Int32
	c, _ := newTestClient(t, "k", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sent.Store(int32(len(r.URL.Query()["point"])))
		fmt.Fprint(w, `{"paths":[]}`)
	}))

	geo, err := c.GetRouteGeometry(context.Background(), pts(20))
	require.NoError(t, err)
	assert.Equal(t, int32(15), sent.Load())
	assert.Empty(t, geo)
}

func TestGetRouteGeometry_MissingStructureIsEmpty(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no paths", `{"info":{}}`},
		{"null body", `null`},
		{"empty paths", `{"paths":[]}`},
		{"paths not a list", `{"paths":"x"}`},
		{"encoded polyline", `{"paths":[{"points":"_p~iF~ps|U_ulLnnqC"}]}`},
		{"no coordinates", `{"paths":[{"points":{"type":"LineString"}}]}`},
		{"coordinates not a list", `{"paths":[{"points":{"coordinates":{}}}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, "k", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))

			geo, err := c.GetRouteGeometry(context.Background(), pts(2))
			require.NoError(t, err)
			assert.NotNil(t, geo)
			assert.Empty(t, geo)
		})
	}
}

func TestGetRouteGeometry_NonNumericCoordinateFails(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"null pair", `{"paths":[{"points":{"coordinates":[[null,null],[-74,40]]}}]}`},
		{"string latitude", `{"paths":[{"points":{"coordinates":[[-74,"40"]]}}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, "k", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))

			geo, err := c.GetRouteGeometry(context.Background(), pts(2))
			assert.ErrorIs(t, err, domain.ErrProvider)
			assert.Nil(t, geo)
		})
	}
}

func TestGetRouteGeometry_Errors(t *testing.T) {
	c, _ := newTestClient(t, "", http.NotFoundHandler())
	_, err := c.GetRouteGeometry(context.Background(), pts(2))
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	c, _ = newTestClient(t, "k", http.NotFoundHandler())
	_, err = c.GetRouteGeometry(context.Background(), pts(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, _ = newTestClient(t, "k", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	_, err = c.GetRouteGeometry(context.Background(), pts(2))
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestCircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, "k", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	for i := 0; i < 7; i++ {
		_, err := c.GetRouteGeometry(context.Background(), pts(2))
		assert.ErrorIs(t, err, domain.ErrProvider)
	}
	assert.Equal(t, int32(5), calls.Load(), "breaker should short-circuit after five consecutive failures")
}

func TestCircuitBreakerIgnoresClientErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, "k", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"Point 0 is out of bounds"}`)
	}))

	for i := 0; i < 7; i++ {
		_, err := c.GetRouteGeometry(context.Background(), pts(2))
		assert.ErrorIs(t, err, domain.ErrProvider)
	}
	assert.Equal(t, int32(7), calls.Load(), "400 responses reach the provider every time")
}

func TestCircuitBreakerTripsOnTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, "k", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	for i := 0; i < 7; i++ {
		_, err := c.GetRouteGeometry(context.Background(), pts(2))
		assert.ErrorIs(t, err, domain.ErrProvider)
	}
	assert.Equal(t, int32(5), calls.Load())
}
