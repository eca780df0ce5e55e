package viewport

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/domain/route"
)

var (
	boston  = geo.Coordinate{Lat: 42.3601, Lng: -71.0589}
	airport = geo.Coordinate{Lat: 42.3656, Lng: -71.0096}
)

// fakeRenderer records every drawing instruction.
type fakeRenderer struct {
	mu          sync.Mutex
	cameras     []geo.Coordinate
	fits        []geo.Padding
	user        *geo.Coordinate
	destination *geo.Coordinate
	routeLen    int
	crosshair   bool
}

func (f *fakeRenderer) SetCamera(center geo.Coordinate, zoom float64, animated bool, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cameras = append(f.cameras, center)
}

func (f *fakeRenderer) FitBounds(b geo.Bounds, p geo.Padding, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fits = append(f.fits, p)
}

func (f *fakeRenderer) ShowUserMarker(c geo.Coordinate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = &c
}

func (f *fakeRenderer) ShowDestinationMarker(c geo.Coordinate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destination = &c
}

func (f *fakeRenderer) HideDestinationMarker() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destination = nil
}

func (f *fakeRenderer) ShowRoute(points []geo.Coordinate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routeLen = len(points)
}

func (f *fakeRenderer) ClearRoute() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routeLen = 0
}

func (f *fakeRenderer) ShowCrosshair(visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.crosshair = visible
}

func (f *fakeRenderer) fitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fits)
}

type fixedLocator struct {
	pos geo.Coordinate
	err error
}

func (l fixedLocator) Current(context.Context, LocateOptions) (geo.Coordinate, error) {
	return l.pos, l.err
}

func testViewport() (*Viewport, *fakeRenderer) {
	r := &fakeRenderer{}
	v := New(Config{
		DefaultCenter: boston,
		DefaultZoom:   12,
		FitAnimation:  700 * time.Millisecond,
		EdgePadding:   24,
	}, r, zap.NewNop())
	return v, r
}

func TestNewStartsAtDefaultCenter(t *testing.T) {
	v, r := testViewport()

	assert.Equal(t, boston, v.Center())
	require.Len(t, r.cameras, 1)
	assert.Equal(t, boston, r.cameras[0])
}

func TestLocateRecentersOnPosition(t *testing.T) {
	v, r := testViewport()

	v.Locate(context.Background(), fixedLocator{pos: airport})

	assert.Equal(t, airport, v.Center())
	require.NotNil(t, r.user)
	assert.Equal(t, airport, *r.user)
}

func TestLocateFailureKeepsDefaultCenter(t *testing.T) {
	v, r := testViewport()

	v.Locate(context.Background(), fixedLocator{err: errors.New("permission denied")})

	assert.Equal(t, boston, v.Center())
	assert.Nil(t, r.user)
	assert.Equal(t, "No se pudo obtener la ubicación actual", v.Advisory())
}

func TestLocateSuccessClearsAdvisory(t *testing.T) {
	v, _ := testViewport()

	v.Locate(context.Background(), fixedLocator{err: errors.New("timeout")})
	require.NotEmpty(t, v.Advisory())

	v.Locate(context.Background(), fixedLocator{pos: airport})
	assert.Empty(t, v.Advisory())
}

func TestDismissAdvisory(t *testing.T) {
	v, _ := testViewport()

	v.Locate(context.Background(), fixedLocator{err: errors.New("denied")})
	require.NotEmpty(t, v.Advisory())

	v.DismissAdvisory()
	assert.Empty(t, v.Advisory())
}

func TestMarkerPrecedence(t *testing.T) {
	v, _ := testViewport()

	_, ok := v.MarkerPosition()
	assert.False(t, ok, "nothing set yet")

	r, err := route.New([]geo.Coordinate{boston, airport}, nil)
	require.NoError(t, err)
	v.SetRoute(r)

	pos, ok := v.MarkerPosition()
	require.True(t, ok)
	assert.Equal(t, airport, pos, "route endpoint stands in when no destination is pinned")

	pin := geo.Coordinate{Lat: 42.35, Lng: -71.07}
	v.SetDestination(pin)

	pos, ok = v.MarkerPosition()
	require.True(t, ok)
	assert.Equal(t, pin, pos, "explicit destination wins over the route endpoint")

	v.ClearDestination()
	pos, ok = v.MarkerPosition()
	require.True(t, ok)
	assert.Equal(t, airport, pos)
}

func TestSetRouteFitsWithEdgePadding(t *testing.T) {
	v, fr := testViewport()

	r, err := route.New([]geo.Coordinate{boston, airport}, nil)
	require.NoError(t, err)
	v.SetRoute(r)

	require.Equal(t, 1, fr.fitCount())
	assert.Equal(t, geo.Uniform(24), fr.fits[0])
	assert.Equal(t, 2, fr.routeLen)
}

func TestBottomObstructionExtendsBottomPadding(t *testing.T) {
	v, fr := testViewport()

	r, err := route.New([]geo.Coordinate{boston, airport}, nil)
	require.NoError(t, err)
	v.SetRoute(r)
	v.SetBottomObstruction(280)

	require.Equal(t, 2, fr.fitCount())
	got := fr.fits[1]
	assert.Equal(t, 24, got.Top)
	assert.Equal(t, 24+280, got.Bottom)
}

func TestPickingSuppressesFitting(t *testing.T) {
	v, fr := testViewport()

	v.SetPicking(true)
	assert.True(t, fr.crosshair)
	assert.True(t, v.Picking())

	r, err := route.New([]geo.Coordinate{boston, airport}, nil)
	require.NoError(t, err)
	v.SetRoute(r)

	assert.Zero(t, fr.fitCount(), "no automatic fit while picking")

	v.SetPicking(false)
	assert.False(t, fr.crosshair)
}

func TestReportCenterTracksGestures(t *testing.T) {
	v, _ := testViewport()

	moved := geo.Coordinate{Lat: 42.40, Lng: -71.10}
	v.ReportCenter(moved)
	assert.Equal(t, moved, v.Center())

	// Invalid centers are ignored.
	v.ReportCenter(geo.Coordinate{Lat: math.NaN(), Lng: 0})
	assert.Equal(t, moved, v.Center())
}

func TestRefitWithNothingVisibleIsNoop(t *testing.T) {
	v, fr := testViewport()

	v.SetBottomObstruction(100)

	assert.Zero(t, fr.fitCount())
}
