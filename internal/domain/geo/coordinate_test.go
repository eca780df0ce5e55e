package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinateValid(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		want  bool
	}{
		{"boston", Coordinate{Lat: 42.3601, Lng: -71.0589}, true},
		{"zero", Coordinate{}, true},
		{"nan lat", Coordinate{Lat: math.NaN(), Lng: 0}, false},
		{"nan lng", Coordinate{Lat: 0, Lng: math.NaN()}, false},
		{"inf lat", Coordinate{Lat: math.Inf(1), Lng: 0}, false},
		{"neg inf lng", Coordinate{Lat: 0, Lng: math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coord.Valid())
		})
	}
}

func TestBoundsOf(t *testing.T) {
	points := []Coordinate{
		{Lat: 42.36, Lng: -71.06},
		{Lat: 42.40, Lng: -71.00},
		{Lat: math.NaN(), Lng: -71.02}, // skipped
		{Lat: 42.30, Lng: -71.10},
	}

	b, ok := BoundsOf(points)
	assert.True(t, ok)
	assert.InDelta(t, 42.30, b.SouthWest.Lat, 1e-9)
	assert.InDelta(t, -71.10, b.SouthWest.Lng, 1e-9)
	assert.InDelta(t, 42.40, b.NorthEast.Lat, 1e-9)
	assert.InDelta(t, -71.00, b.NorthEast.Lng, 1e-9)
}

func TestBoundsOfNoValidPoints(t *testing.T) {
	_, ok := BoundsOf([]Coordinate{{Lat: math.NaN(), Lng: 0}})
	assert.False(t, ok)

	_, ok = BoundsOf(nil)
	assert.False(t, ok)
}
