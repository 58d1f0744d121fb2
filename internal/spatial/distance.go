package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)

// Meters of latitude per degree (constant over the globe, to first order)
const metersPerDegreeLat = 111320.0

// HaversineDistance calculates the great-circle distance between two points in meters
// using the Haversine formula
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// BoundingBox returns the lat/lon bounds of a box that fully contains the
// circle of the given radius (meters) around a point. Used as a cheap index
// prefilter before the exact haversine check.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, maxLat, minLon, maxLon float64) {
	latDelta := radiusMeters / metersPerDegreeLat

	// Longitude degrees shrink towards the poles; guard the cos near ±90°
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonDelta := radiusMeters / (metersPerDegreeLat * cosLat)

	return lat - latDelta, lat + latDelta, lon - lonDelta, lon + lonDelta
}
