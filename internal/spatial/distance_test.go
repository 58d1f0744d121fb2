package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	// One degree of latitude is ~111.2km
	d := HaversineDistance(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 200)

	assert.Zero(t, HaversineDistance(51.5, -0.12, 51.5, -0.12))
}

func TestHaversineSymmetry(t *testing.T) {
	a := HaversineDistance(35.7148, 139.7967, 35.7101, 139.8107)
	b := HaversineDistance(35.7101, 139.8107, 35.7148, 139.7967)
	assert.InDelta(t, a, b, 1e-6)
}

func TestBoundingBoxContainsCircle(t *testing.T) {
	lat, lon, radius := 51.5, -0.12, 150.0
	minLat, maxLat, minLon, maxLon := BoundingBox(lat, lon, radius)

	assert.Less(t, minLat, lat)
	assert.Greater(t, maxLat, lat)
	assert.Less(t, minLon, lon)
	assert.Greater(t, maxLon, lon)

	// Points on the circle's cardinal extremes stay inside the box
	north := lat + radius/111320.0
	assert.LessOrEqual(t, north, maxLat)
	east := HaversineDistance(lat, lon, lat, maxLon)
	assert.GreaterOrEqual(t, east, radius)
}
