package viewport

import (
	"time"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
)

// NopRenderer discards every drawing instruction. The server runs viewports
// headless: clients mirror viewport state from flow snapshots instead of a
// server-side drawing surface.
type NopRenderer struct{}

func (NopRenderer) SetCamera(geo.Coordinate, float64, bool, time.Duration) {}
func (NopRenderer) FitBounds(geo.Bounds, geo.Padding, time.Duration)       {}
func (NopRenderer) ShowUserMarker(geo.Coordinate)                          {}
func (NopRenderer) ShowDestinationMarker(geo.Coordinate)                   {}
func (NopRenderer) HideDestinationMarker()                                 {}
func (NopRenderer) ShowRoute([]geo.Coordinate)                             {}
func (NopRenderer) ClearRoute()                                            {}
func (NopRenderer) ShowCrosshair(bool)                                     {}
