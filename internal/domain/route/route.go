package route

import (
	"github.com/twpayne/go-polyline"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/platform/domain"
)

// Metrics are the scalar summaries of a driving route. They are absent when
// the routing service did not report them (straight-line fallback).
type Metrics struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Route is an ordered path from origin to destination, at least two points
// long. It is replaced wholesale on every recomputation and never mutated.
type Route struct {
	Points  []geo.Coordinate `json:"points"`
	Metrics *Metrics         `json:"metrics,omitempty"`
}

// New builds a Route from points in latitude/longitude order, dropping any
// non-finite points at the boundary. metrics may be nil.
func New(points []geo.Coordinate, metrics *Metrics) (Route, error) {
	valid := make([]geo.Coordinate, 0, len(points))
	for _, p := range points {
		if p.Valid() {
			valid = append(valid, p)
		}
	}
	if len(valid) < 2 {
		return Route{}, domain.NewValidationError("route needs at least two valid points")
	}
	return Route{Points: valid, Metrics: metrics}, nil
}

// StraightLine builds the degenerate two-point fallback route with no
// metrics. Callers treat missing metrics as "use flat pricing".
func StraightLine(origin, destination geo.Coordinate) Route {
	return Route{Points: []geo.Coordinate{origin, destination}}
}

// Origin returns the first point of the route.
func (r Route) Origin() geo.Coordinate {
	return r.Points[0]
}

// Destination returns the last point of the route.
func (r Route) Destination() geo.Coordinate {
	return r.Points[len(r.Points)-1]
}

// PricingMetrics returns the distance and duration usable for metered
// pricing. ok is false when metrics are absent or non-positive, in which case
// the pricing engine falls back to the flat base fare.
func (r Route) PricingMetrics() (distanceMeters, durationSeconds float64, ok bool) {
	if r.Metrics == nil {
		return 0, 0, false
	}
	if r.Metrics.DistanceMeters <= 0 || r.Metrics.DurationSeconds <= 0 {
		return 0, 0, false
	}
	return r.Metrics.DistanceMeters, r.Metrics.DurationSeconds, true
}

// Polyline encodes the route geometry for compact persistence.
func (r Route) Polyline() string {
	coords := make([][]float64, len(r.Points))
	for i, p := range r.Points {
		coords[i] = []float64{p.Lat, p.Lng}
	}
	return string(polyline.EncodeCoords(coords))
}
