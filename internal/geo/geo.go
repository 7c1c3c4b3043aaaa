// Package geo provides geographic proximity math for beacon discovery.
package geo

import (
	"math"

	"github.com/rallypoint/rallypoint/internal/model"
)

// DiscoveryRadiusMeters is the fixed radius for nearby-beacon queries.
const DiscoveryRadiusMeters = 1500

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b model.Location) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLon*sinLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// WithinRadius returns true if the two points are at most meters apart.
func WithinRadius(a, b model.Location, meters float64) bool {
	return Distance(a, b) <= meters
}
