package domain

import (
	"math"
	"strconv"
	"strings"
)

// Earth radius used for great-circle distances, in meters.
const earthRadiusMeters = 6371000.0

// Immutable geographic coordinates (latitude, longitude).
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether both coordinates are finite and inside WGS84 bounds.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Return coordinates as [lat, lon] for external API compatibility.
func (p Point) LatLon() []float64 { return []float64{p.Lat, p.Lon} }

// String renders "lat,lon" without trailing zeros.
func (p Point) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64)
}

// DistanceMeters returns the Haversine great-circle distance between a and b.
func DistanceMeters(a, b Point) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// CanonicalPoints serializes an ordered point list into a stable string,
// e.g. "[40,-74;40.3,-74.3]". Used for cache keys.
func CanonicalPoints(points []Point) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, p.String())
	}
	return "[" + strings.Join(parts, ";") + "]"
}
