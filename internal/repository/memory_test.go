package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/domain/route"
	"github.com/intu-mobility/service-ride/internal/domain/trip"
	"github.com/intu-mobility/service-ride/internal/platform/domain"
)

func newTrip(t *testing.T, riderID uuid.UUID) *trip.Trip {
	t.Helper()
	r, err := route.New(
		[]geo.Coordinate{{Lat: 42.3601, Lng: -71.0589}, {Lat: 42.3656, Lng: -71.0096}},
		&route.Metrics{DistanceMeters: 5000, DurationSeconds: 1200},
	)
	require.NoError(t, err)

	tr, err := trip.NewTrip(riderID, "Logan Airport", r, "economy", "IntuEconomy", 23.01, "USD")
	require.NoError(t, err)
	return tr
}

func TestSaveRejectsDuplicates(t *testing.T) {
	repo := NewInMemoryTripRepository()
	tr := newTrip(t, uuid.New())

	require.NoError(t, repo.Save(context.Background(), tr))
	err := repo.Save(context.Background(), tr)

	kind, ok := domain.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindConflict, kind)
}

func TestUpdateRejectsStaleVersion(t *testing.T) {
	repo := NewInMemoryTripRepository()
	ctx := context.Background()
	tr := newTrip(t, uuid.New())
	require.NoError(t, repo.Save(ctx, tr))

	require.NoError(t, tr.AssignDriver(uuid.New()))
	tr.IncrementVersion()
	require.NoError(t, repo.Update(ctx, tr))

	// A copy still carrying the original version must lose the race.
	now := time.Now().UTC()
	stale := trip.ReconstructTrip(
		tr.ID(), tr.TripNumber(), tr.RiderID(), nil, trip.StatusRequested,
		tr.DestinationLabel(), tr.Origin(), tr.Destination(), tr.RoutePolyline(),
		tr.RouteMetrics(), tr.VehicleClassID(), tr.VehicleClassName(),
		tr.QuotedAmount(), tr.Currency(), tr.RequestedAt(),
		nil, nil, nil, "", 1, now, now,
	)
	err := repo.Update(ctx, stale)

	kind, ok := domain.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindConflict, kind)
}

func TestFindByRiderIDPaginates(t *testing.T) {
	repo := NewInMemoryTripRepository()
	ctx := context.Background()
	riderID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, newTrip(t, riderID)))
	}
	require.NoError(t, repo.Save(ctx, newTrip(t, uuid.New())))

	first, total, err := repo.FindByRiderID(ctx, riderID, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, first, 2)

	second, total, err := repo.FindByRiderID(ctx, riderID, "", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, second, 1)

	empty, total, err := repo.FindByRiderID(ctx, riderID, "", 3, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, empty)
}

func TestFindByIDNotFound(t *testing.T) {
	repo := NewInMemoryTripRepository()

	_, err := repo.FindByID(context.Background(), uuid.New())
	kind, ok := domain.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindNotFound, kind)
}
