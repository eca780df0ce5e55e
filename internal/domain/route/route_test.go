package route

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
)

func TestNewDropsInvalidPoints(t *testing.T) {
	r, err := New([]geo.Coordinate{
		{Lat: 42.36, Lng: -71.06},
		{Lat: math.NaN(), Lng: -71.05},
		{Lat: 42.37, Lng: -71.04},
	}, nil)
	require.NoError(t, err)
	assert.Len(t, r.Points, 2)
}

func TestNewRejectsTooFewPoints(t *testing.T) {
	_, err := New([]geo.Coordinate{{Lat: 42.36, Lng: -71.06}}, nil)
	assert.Error(t, err)

	_, err = New([]geo.Coordinate{
		{Lat: 42.36, Lng: -71.06},
		{Lat: math.Inf(1), Lng: -71.05},
	}, nil)
	assert.Error(t, err)
}

func TestStraightLine(t *testing.T) {
	origin := geo.Coordinate{Lat: 42.36, Lng: -71.06}
	dest := geo.Coordinate{Lat: 42.40, Lng: -71.00}

	r := StraightLine(origin, dest)
	assert.Equal(t, []geo.Coordinate{origin, dest}, r.Points)
	assert.Nil(t, r.Metrics)
	assert.Equal(t, origin, r.Origin())
	assert.Equal(t, dest, r.Destination())
}

func TestPricingMetrics(t *testing.T) {
	base := []geo.Coordinate{{Lat: 42.36, Lng: -71.06}, {Lat: 42.40, Lng: -71.00}}

	tests := []struct {
		name    string
		metrics *Metrics
		wantOK  bool
	}{
		{"absent", nil, false},
		{"zero distance", &Metrics{DistanceMeters: 0, DurationSeconds: 600}, false},
		{"zero duration", &Metrics{DistanceMeters: 5000, DurationSeconds: 0}, false},
		{"negative", &Metrics{DistanceMeters: -1, DurationSeconds: -1}, false},
		{"present", &Metrics{DistanceMeters: 5000, DurationSeconds: 1200}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(base, tt.metrics)
			require.NoError(t, err)
			d, s, ok := r.PricingMetrics()
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.metrics.DistanceMeters, d)
				assert.Equal(t, tt.metrics.DurationSeconds, s)
			}
		})
	}
}

func TestPolylineRoundTrip(t *testing.T) {
	r := StraightLine(
		geo.Coordinate{Lat: 42.3601, Lng: -71.0589},
		geo.Coordinate{Lat: 42.4001, Lng: -71.0001},
	)
	assert.NotEmpty(t, r.Polyline())
}
