package viewport

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/domain/route"
)

// Renderer is the drawing surface the viewport drives. Implementations are
// free to be a real map SDK bridge or a test double; the viewport only
// pushes state, it never reads back.
type Renderer interface {
	SetCamera(center geo.Coordinate, zoom float64, animated bool, duration time.Duration)
	FitBounds(bounds geo.Bounds, padding geo.Padding, duration time.Duration)
	ShowUserMarker(c geo.Coordinate)
	ShowDestinationMarker(c geo.Coordinate)
	HideDestinationMarker()
	ShowRoute(points []geo.Coordinate)
	ClearRoute()
	ShowCrosshair(visible bool)
}

// Locator resolves the device's current position. Failures are advisory: the
// viewport stays on its default center and the flow continues.
type Locator interface {
	Current(ctx context.Context, opts LocateOptions) (geo.Coordinate, error)
}

// LocateOptions tune a position request. MaxAge allows a cached fix no older
// than the given duration; zero demands a fresh one.
type LocateOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxAge       time.Duration
}

// locationAdvisory is shown, dismissibly, when the device position cannot be
// resolved. The flow keeps going on the default center.
const locationAdvisory = "No se pudo obtener la ubicación actual"

// Config holds the viewport's tunables; see config.MapConfig.
type Config struct {
	DefaultCenter geo.Coordinate
	DefaultZoom   float64
	FitAnimation  time.Duration
	EdgePadding   int
	Locate        LocateOptions
}

// Viewport owns the camera, markers and route overlay. Destination markers
// take precedence over the route's endpoint; while picking mode is active
// automatic bounds fitting is suppressed so the user keeps manual control.
type Viewport struct {
	cfg      Config
	renderer Renderer
	logger   *zap.Logger

	mu            sync.Mutex
	center        geo.Coordinate
	zoom          float64
	userLocation  *geo.Coordinate
	destination   *geo.Coordinate
	routePoints   []geo.Coordinate
	picking       bool
	bottomPadding int
	advisory      string
}

func New(cfg Config, renderer Renderer, logger *zap.Logger) *Viewport {
	v := &Viewport{
		cfg:      cfg,
		renderer: renderer,
		logger:   logger,
		center:   cfg.DefaultCenter,
		zoom:     cfg.DefaultZoom,
	}
	renderer.SetCamera(v.center, v.zoom, false, 0)
	return v
}

// Locate resolves the device position and recenters on it. On failure the
// camera stays where it is and a dismissible advisory is raised; position is
// a convenience, never a requirement.
func (v *Viewport) Locate(ctx context.Context, locator Locator) {
	opts := v.cfg.Locate
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	pos, err := locator.Current(ctx, opts)
	if err != nil || !pos.Valid() {
		v.logger.Info("device position unavailable, keeping default center", zap.Error(err))
		v.mu.Lock()
		v.advisory = locationAdvisory
		v.mu.Unlock()
		return
	}

	v.mu.Lock()
	v.userLocation = &pos
	v.center = pos
	v.advisory = ""
	v.mu.Unlock()

	v.renderer.ShowUserMarker(pos)
	v.renderer.SetCamera(pos, v.cfg.DefaultZoom, true, v.cfg.FitAnimation)
}

// Advisory returns the pending location advisory, empty when there is none.
func (v *Viewport) Advisory() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.advisory
}

// DismissAdvisory clears the location advisory.
func (v *Viewport) DismissAdvisory() {
	v.mu.Lock()
	v.advisory = ""
	v.mu.Unlock()
}

// SetDestination pins the chosen destination and re-fits the camera.
func (v *Viewport) SetDestination(c geo.Coordinate) {
	v.mu.Lock()
	v.destination = &c
	v.mu.Unlock()

	v.renderer.ShowDestinationMarker(c)
	v.refit()
}

// ClearDestination removes the pin; an endpoint marker from a still-present
// route, if any, takes over via MarkerPosition.
func (v *Viewport) ClearDestination() {
	v.mu.Lock()
	v.destination = nil
	v.mu.Unlock()

	v.renderer.HideDestinationMarker()
}

// SetRoute replaces the drawn route wholesale and re-fits the camera around
// everything visible.
func (v *Viewport) SetRoute(r route.Route) {
	v.mu.Lock()
	v.routePoints = r.Points
	v.mu.Unlock()

	v.renderer.ShowRoute(r.Points)
	v.refit()
}

// ClearRoute removes the route overlay.
func (v *Viewport) ClearRoute() {
	v.mu.Lock()
	v.routePoints = nil
	v.mu.Unlock()

	v.renderer.ClearRoute()
}

// SetPicking toggles map-pin selection mode. While active the crosshair is
// shown and automatic fitting is suppressed; the camera center doubles as
// the provisional pick.
func (v *Viewport) SetPicking(active bool) {
	v.mu.Lock()
	v.picking = active
	v.mu.Unlock()

	v.renderer.ShowCrosshair(active)
}

// ReportCenter records the camera center after a user gesture. The renderer
// calls this; in picking mode the reported center is the candidate pick.
func (v *Viewport) ReportCenter(c geo.Coordinate) {
	if !c.Valid() {
		return
	}
	v.mu.Lock()
	v.center = c
	v.mu.Unlock()
}

// Center returns the current camera center.
func (v *Viewport) Center() geo.Coordinate {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.center
}

// Picking reports whether pin selection mode is active.
func (v *Viewport) Picking() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.picking
}

// MarkerPosition resolves the single visible destination marker: an explicit
// destination wins, otherwise the route endpoint, otherwise nothing.
func (v *Viewport) MarkerPosition() (geo.Coordinate, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destination != nil {
		return *v.destination, true
	}
	if len(v.routePoints) > 0 {
		return v.routePoints[len(v.routePoints)-1], true
	}
	return geo.Coordinate{}, false
}

// SetBottomObstruction reserves vertical space covered by an overlay panel,
// in pixels, and re-fits so the route stays fully visible above it.
func (v *Viewport) SetBottomObstruction(px int) {
	v.mu.Lock()
	v.bottomPadding = px
	v.mu.Unlock()

	v.refit()
}

// refit frames every visible element with edge padding. Suppressed in
// picking mode and when there is nothing to frame.
func (v *Viewport) refit() {
	v.mu.Lock()
	if v.picking {
		v.mu.Unlock()
		return
	}
	points := make([]geo.Coordinate, 0, len(v.routePoints)+2)
	points = append(points, v.routePoints...)
	if v.destination != nil {
		points = append(points, *v.destination)
	}
	if v.userLocation != nil {
		points = append(points, *v.userLocation)
	}
	padding := geo.Uniform(v.cfg.EdgePadding)
	padding.Bottom += v.bottomPadding
	v.mu.Unlock()

	bounds, ok := geo.BoundsOf(points)
	if !ok {
		return
	}
	v.renderer.FitBounds(bounds, padding, v.cfg.FitAnimation)
}
