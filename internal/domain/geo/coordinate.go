package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite numbers. Coordinates that
// fail this check are dropped at the boundary and never reach rendering or
// pricing code.
func (c Coordinate) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lng) &&
		!math.IsInf(c.Lat, 0) && !math.IsInf(c.Lng, 0)
}

// LatLng converts the coordinate to an s2 LatLng.
func (c Coordinate) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lng)
}
