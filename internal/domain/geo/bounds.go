package geo

import "github.com/golang/geo/s2"

// Bounds is a latitude/longitude rectangle.
type Bounds struct {
	SouthWest Coordinate `json:"south_west"`
	NorthEast Coordinate `json:"north_east"`
}

// Padding is four-sided pixel padding applied when fitting bounds into a
// viewport.
type Padding struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Uniform returns padding with the same value on every side.
func Uniform(px int) Padding {
	return Padding{Top: px, Right: px, Bottom: px, Left: px}
}

// BoundsOf accumulates the bounding rectangle of all valid points. The second
// return value is false when no valid point was supplied.
func BoundsOf(points []Coordinate) (Bounds, bool) {
	rect := s2.EmptyRect()
	any := false
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		rect = rect.AddPoint(p.LatLng())
		any = true
	}
	if !any {
		return Bounds{}, false
	}

	return Bounds{
		SouthWest: Coordinate{Lat: rect.Lo().Lat.Degrees(), Lng: rect.Lo().Lng.Degrees()},
		NorthEast: Coordinate{Lat: rect.Hi().Lat.Degrees(), Lng: rect.Hi().Lng.Degrees()},
	}, true
}
