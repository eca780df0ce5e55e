package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/domain/route"
	"github.com/intu-mobility/service-ride/internal/domain/trip"
	"github.com/intu-mobility/service-ride/internal/platform/domain"
	"github.com/intu-mobility/service-ride/internal/repository"
)

var (
	testOrigin      = geo.Coordinate{Lat: 42.3601, Lng: -71.0589}
	testDestination = geo.Coordinate{Lat: 42.3656, Lng: -71.0096}
)

func testRoute(t *testing.T) route.Route {
	t.Helper()
	r, err := route.New(
		[]geo.Coordinate{testOrigin, testDestination},
		&route.Metrics{DistanceMeters: 5000, DurationSeconds: 1200},
	)
	require.NoError(t, err)
	return r
}

func testInput(t *testing.T) RequestTripInput {
	return RequestTripInput{
		DestinationLabel: "Logan International Airport, Boston",
		Route:            testRoute(t),
		VehicleClassID:   "economy",
		VehicleClassName: "IntuEconomy",
		QuotedAmount:     23.01,
	}
}

func newTripService() *TripService {
	return NewTripService(repository.NewInMemoryTripRepository(), nil, zap.NewNop())
}

func TestRequestTripCreatesRequestedTrip(t *testing.T) {
	svc := newTripService()
	riderID := uuid.New()

	dto, err := svc.RequestTrip(context.Background(), riderID, testInput(t))
	require.NoError(t, err)

	assert.Equal(t, riderID, dto.RiderID)
	assert.Equal(t, "requested", dto.Status)
	assert.Equal(t, "RD-", dto.TripNumber[:3])
	assert.Equal(t, "Logan International Airport, Boston", dto.DestinationLabel)
	assert.Equal(t, testOrigin, dto.Origin)
	assert.Equal(t, testDestination, dto.Destination)
	assert.NotEmpty(t, dto.RoutePolyline)
	assert.InDelta(t, 23.01, dto.QuotedAmount, 1e-9)
	assert.Equal(t, CurrencyUSD, dto.Currency)
	assert.Nil(t, dto.DriverID)
}

func TestRequestTripRejectsInvalidInput(t *testing.T) {
	svc := newTripService()

	input := testInput(t)
	input.QuotedAmount = 0
	_, err := svc.RequestTrip(context.Background(), uuid.New(), input)
	assert.Error(t, err)
}

func TestAssignDriverAdvancesTrip(t *testing.T) {
	svc := newTripService()
	riderID := uuid.New()
	driverID := uuid.New()

	created, err := svc.RequestTrip(context.Background(), riderID, testInput(t))
	require.NoError(t, err)

	dto, err := svc.AssignDriver(context.Background(), created.ID, driverID)
	require.NoError(t, err)

	assert.Equal(t, "driver_assigned", dto.Status)
	require.NotNil(t, dto.DriverID)
	assert.Equal(t, driverID, *dto.DriverID)
	assert.NotNil(t, dto.AssignedAt)
	assert.Greater(t, dto.Version, created.Version)
}

func TestAssignDriverUnknownTrip(t *testing.T) {
	svc := newTripService()

	_, err := svc.AssignDriver(context.Background(), uuid.New(), uuid.New())
	kind, ok := domain.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindNotFound, kind)
}

func TestCompleteTripFinishesAssignedTrip(t *testing.T) {
	svc := newTripService()
	riderID := uuid.New()

	created, err := svc.RequestTrip(context.Background(), riderID, testInput(t))
	require.NoError(t, err)
	_, err = svc.AssignDriver(context.Background(), created.ID, uuid.New())
	require.NoError(t, err)

	dto, err := svc.CompleteTrip(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, "completed", dto.Status)
	assert.NotNil(t, dto.CompletedAt)

	// Completing a requested trip skips driver assignment.
	other, err := svc.RequestTrip(context.Background(), riderID, testInput(t))
	require.NoError(t, err)
	_, err = svc.CompleteTrip(context.Background(), other.ID)
	kind, ok := domain.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindInvalidState, kind)
}

func TestCancelTripByOtherRiderForbidden(t *testing.T) {
	svc := newTripService()
	riderID := uuid.New()

	created, err := svc.RequestTrip(context.Background(), riderID, testInput(t))
	require.NoError(t, err)

	_, err = svc.CancelTrip(context.Background(), created.ID, uuid.New(), "not mine")
	kind, ok := domain.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindForbidden, kind)
}

func TestCancelTripRecordsReason(t *testing.T) {
	svc := newTripService()
	riderID := uuid.New()

	created, err := svc.RequestTrip(context.Background(), riderID, testInput(t))
	require.NoError(t, err)

	dto, err := svc.CancelTrip(context.Background(), created.ID, riderID, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, "cancelled", dto.Status)
	assert.Equal(t, "changed my mind", dto.CancelNote)
	assert.NotNil(t, dto.CancelledAt)
}

func TestListTripsFiltersByStatus(t *testing.T) {
	svc := newTripService()
	riderID := uuid.New()

	first, err := svc.RequestTrip(context.Background(), riderID, testInput(t))
	require.NoError(t, err)
	_, err = svc.RequestTrip(context.Background(), riderID, testInput(t))
	require.NoError(t, err)
	_, err = svc.CancelTrip(context.Background(), first.ID, riderID, "")
	require.NoError(t, err)

	all, total, err := svc.ListTrips(context.Background(), riderID, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	cancelled, total, err := svc.ListTrips(context.Background(), riderID, "cancelled", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, cancelled, 1)
	assert.Equal(t, first.ID, cancelled[0].ID)

	_, _, err = svc.ListTrips(context.Background(), riderID, "teleporting", 1, 20)
	assert.Error(t, err, "unknown status filter must be rejected")
}

func TestStatsCountCompletedSpendOnly(t *testing.T) {
	svc := newTripService()
	riderID := uuid.New()

	first, err := svc.RequestTrip(context.Background(), riderID, testInput(t))
	require.NoError(t, err)
	second, err := svc.RequestTrip(context.Background(), riderID, testInput(t))
	require.NoError(t, err)

	_, err = svc.AssignDriver(context.Background(), first.ID, uuid.New())
	require.NoError(t, err)
	_, err = svc.CompleteTrip(context.Background(), first.ID)
	require.NoError(t, err)
	_, err = svc.CancelTrip(context.Background(), second.ID, riderID, "")
	require.NoError(t, err)

	stats, err := svc.GetStats(context.Background(), riderID)
	require.NoError(t, err)

	assert.Equal(t, trip.Stats{
		TotalTrips:     2,
		CompletedTrips: 1,
		TotalSpent:     23.01,
	}, stats)
}

func TestCountByStatus(t *testing.T) {
	svc := newTripService()
	riderID := uuid.New()

	first, err := svc.RequestTrip(context.Background(), riderID, testInput(t))
	require.NoError(t, err)
	_, err = svc.RequestTrip(context.Background(), riderID, testInput(t))
	require.NoError(t, err)
	_, err = svc.CancelTrip(context.Background(), first.ID, riderID, "")
	require.NoError(t, err)

	counts, err := svc.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["requested"])
	assert.Equal(t, int64(1), counts["cancelled"])
}
