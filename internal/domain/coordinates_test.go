package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMetersSymmetricAndZero(t *testing.T) {
	points := []Point{
		{Lat: 40.0, Lon: -74.0},
		{Lat: 41.0, Lon: -75.0},
		{Lat: -33.86, Lon: 151.21},
		{Lat: 0, Lon: 179.9},
		{Lat: 0, Lon: -179.9},
	}

	for _, a := range points {
		assert.Zero(t, DistanceMeters(a, a), "distance of %v to itself", a)
		for _, b := range points {
			assert.InDelta(t, DistanceMeters(a, b), DistanceMeters(b, a), 1e-6, "%v <-> %v", a, b)
		}
	}
}

func TestDistanceMetersKnownValues(t *testing.T) {
	// One degree of latitude along a meridian.
	d := DistanceMeters(Point{Lat: 0, Lon: 0}, Point{Lat: 1, Lon: 0})
	assert.InDelta(t, 6371000*math.Pi/180, d, 0.5)

	// Across the antimeridian the short way round.
	d = DistanceMeters(Point{Lat: 0, Lon: 179.9}, Point{Lat: 0, Lon: -179.9})
	assert.Less(t, d, 25000.0)
}

func TestPointValid(t *testing.T) {
	assert.True(t, Point{Lat: 37.77, Lon: -122.42}.Valid())
	assert.False(t, Point{Lat: 91, Lon: 0}.Valid())
	assert.False(t, Point{Lat: 0, Lon: -181}.Valid())
	assert.False(t, Point{Lat: math.NaN(), Lon: 0}.Valid())
}

func TestCanonicalPoints(t *testing.T) {
	got := CanonicalPoints([]Point{{Lat: 40, Lon: -74}, {Lat: 40.3, Lon: -74.3}})
	assert.Equal(t, "[40,-74;40.3,-74.3]", got)
	assert.Equal(t, "[]", CanonicalPoints(nil))
}
