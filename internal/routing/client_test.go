package routing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
)

var (
	testOrigin      = geo.Coordinate{Lat: 42.3601, Lng: -71.0589}
	testDestination = geo.Coordinate{Lat: 42.3656, Lng: -71.0096}
)

const osrmOKBody = `{
	"code": "Ok",
	"routes": [{
		"geometry": {
			"type": "LineString",
			"coordinates": [[-71.0589, 42.3601], [-71.0400, 42.3620], [-71.0096, 42.3656]]
		},
		"distance": 5000,
		"duration": 1200
	}]
}`

func TestPlanDecodesRoute(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "full", r.URL.Query().Get("overview"))
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))
		fmt.Fprint(w, osrmOKBody)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zap.NewNop())
	r, err := client.Plan(context.Background(), testOrigin, testDestination)

	require.NoError(t, err)
	assert.Equal(t, "/route/v1/driving/-71.0589,42.3601;-71.0096,42.3656", gotPath)

	require.Len(t, r.Points, 3)
	// GeoJSON order is lon,lat; the decoded points must be lat,lng.
	assert.InDelta(t, 42.3601, r.Origin().Lat, 1e-9)
	assert.InDelta(t, -71.0589, r.Origin().Lng, 1e-9)
	assert.InDelta(t, 42.3656, r.Destination().Lat, 1e-9)

	distance, duration, ok := r.PricingMetrics()
	require.True(t, ok)
	assert.InDelta(t, 5000, distance, 1e-9)
	assert.InDelta(t, 1200, duration, 1e-9)
}

func TestPlanStraightLineOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zap.NewNop())
	r, err := client.Plan(context.Background(), testOrigin, testDestination)

	require.NoError(t, err)
	require.Len(t, r.Points, 2)
	assert.Equal(t, testOrigin, r.Origin())
	assert.Equal(t, testDestination, r.Destination())

	_, _, ok := r.PricingMetrics()
	assert.False(t, ok, "degraded routes carry no metrics")
}

func TestPlanStraightLineOnNoRouteCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code": "NoRoute", "routes": []}`)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zap.NewNop())
	r, err := client.Plan(context.Background(), testOrigin, testDestination)

	require.NoError(t, err)
	assert.Len(t, r.Points, 2)
}

func TestPlanStraightLineWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zap.NewNop())
	r, err := client.Plan(context.Background(), testOrigin, testDestination)

	require.NoError(t, err)
	assert.Len(t, r.Points, 2)
}

func TestPlanOmitsMetricsWhenZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"code": "Ok",
			"routes": [{
				"geometry": {"type": "LineString", "coordinates": [[-71.0589, 42.3601], [-71.0096, 42.3656]]},
				"distance": 0,
				"duration": 0
			}]
		}`)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zap.NewNop())
	r, err := client.Plan(context.Background(), testOrigin, testDestination)

	require.NoError(t, err)
	_, _, ok := r.PricingMetrics()
	assert.False(t, ok)
}
