package trip

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/domain/route"
	"github.com/intu-mobility/service-ride/internal/platform/domain"
)

const tripNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Trip is the aggregate root for a ride intent: a confirmed quote against a
// destination, written when the rider confirms a vehicle class.
type Trip struct {
	id         uuid.UUID
	tripNumber string
	riderID    uuid.UUID
	driverID   *uuid.UUID
	status     Status

	destinationLabel string
	origin           geo.Coordinate
	destination      geo.Coordinate
	routePolyline    string
	routeMetrics     *route.Metrics

	vehicleClassID   string
	vehicleClassName string
	quotedAmount     float64
	currency         string

	requestedAt time.Time
	assignedAt  *time.Time
	completedAt *time.Time
	cancelledAt *time.Time
	cancelNote  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateTripNumber creates a trip number in the format "RD-XXXXXX".
func generateTripNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tripNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate trip number: %w", err)
		}
		result[i] = tripNumberChars[n.Int64()]
	}
	return "RD-" + string(result), nil
}

// NewTrip creates a new Trip aggregate with status=requested.
func NewTrip(
	riderID uuid.UUID,
	destinationLabel string,
	r route.Route,
	vehicleClassID string,
	vehicleClassName string,
	quotedAmount float64,
	currency string,
) (*Trip, error) {
	if riderID == uuid.Nil {
		return nil, domain.NewValidationError("rider ID is required")
	}
	if destinationLabel == "" {
		return nil, domain.NewValidationError("destination label is required")
	}
	if len(r.Points) < 2 {
		return nil, domain.NewValidationError("trip requires a route")
	}
	if vehicleClassID == "" {
		return nil, domain.NewValidationError("vehicle class is required")
	}
	if quotedAmount <= 0 {
		return nil, domain.NewValidationError("quoted amount must be positive")
	}

	tripNumber, err := generateTripNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Trip{
		id:               uuid.New(),
		tripNumber:       tripNumber,
		riderID:          riderID,
		status:           StatusRequested,
		destinationLabel: destinationLabel,
		origin:           r.Origin(),
		destination:      r.Destination(),
		routePolyline:    r.Polyline(),
		routeMetrics:     r.Metrics,
		vehicleClassID:   vehicleClassID,
		vehicleClassName: vehicleClassName,
		quotedAmount:     quotedAmount,
		currency:         currency,
		requestedAt:      now,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructTrip rebuilds a Trip from persistence data (no validation).
func ReconstructTrip(
	id uuid.UUID,
	tripNumber string,
	riderID uuid.UUID,
	driverID *uuid.UUID,
	status Status,
	destinationLabel string,
	origin geo.Coordinate,
	destination geo.Coordinate,
	routePolyline string,
	routeMetrics *route.Metrics,
	vehicleClassID string,
	vehicleClassName string,
	quotedAmount float64,
	currency string,
	requestedAt time.Time,
	assignedAt *time.Time,
	completedAt *time.Time,
	cancelledAt *time.Time,
	cancelNote string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Trip {
	return &Trip{
		id:               id,
		tripNumber:       tripNumber,
		riderID:          riderID,
		driverID:         driverID,
		status:           status,
		destinationLabel: destinationLabel,
		origin:           origin,
		destination:      destination,
		routePolyline:    routePolyline,
		routeMetrics:     routeMetrics,
		vehicleClassID:   vehicleClassID,
		vehicleClassName: vehicleClassName,
		quotedAmount:     quotedAmount,
		currency:         currency,
		requestedAt:      requestedAt,
		assignedAt:       assignedAt,
		completedAt:      completedAt,
		cancelledAt:      cancelledAt,
		cancelNote:       cancelNote,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

// ID returns the trip's unique identifier.
func (t *Trip) ID() uuid.UUID { return t.id }

// TripNumber returns the human-readable trip number.
func (t *Trip) TripNumber() string { return t.tripNumber }

// RiderID returns the requesting rider's user ID.
func (t *Trip) RiderID() uuid.UUID { return t.riderID }

// DriverID returns the assigned driver's ID, or nil if unassigned.
func (t *Trip) DriverID() *uuid.UUID { return t.driverID }

// Status returns the current trip status.
func (t *Trip) Status() Status { return t.status }

// DestinationLabel returns the display label of the destination.
func (t *Trip) DestinationLabel() string { return t.destinationLabel }

// Origin returns the trip's starting coordinate.
func (t *Trip) Origin() geo.Coordinate { return t.origin }

// Destination returns the trip's destination coordinate.
func (t *Trip) Destination() geo.Coordinate { return t.destination }

// RoutePolyline returns the encoded route geometry.
func (t *Trip) RoutePolyline() string { return t.routePolyline }

// RouteMetrics returns the route's distance/duration, or nil for the
// straight-line fallback.
func (t *Trip) RouteMetrics() *route.Metrics { return t.routeMetrics }

// VehicleClassID returns the confirmed vehicle class id.
func (t *Trip) VehicleClassID() string { return t.vehicleClassID }

// VehicleClassName returns the confirmed vehicle class display name.
func (t *Trip) VehicleClassName() string { return t.vehicleClassName }

// QuotedAmount returns the confirmed quote amount.
func (t *Trip) QuotedAmount() float64 { return t.quotedAmount }

// Currency returns the currency code.
func (t *Trip) Currency() string { return t.currency }

// RequestedAt returns the time the intent was recorded.
func (t *Trip) RequestedAt() time.Time { return t.requestedAt }

// AssignedAt returns the time a driver was assigned, or nil.
func (t *Trip) AssignedAt() *time.Time { return t.assignedAt }

// CompletedAt returns the completion time, or nil.
func (t *Trip) CompletedAt() *time.Time { return t.completedAt }

// CancelledAt returns the cancellation time, or nil.
func (t *Trip) CancelledAt() *time.Time { return t.cancelledAt }

// CancelNote returns the cancellation reason.
func (t *Trip) CancelNote() string { return t.cancelNote }

// Version returns the entity version for optimistic locking.
func (t *Trip) Version() int64 { return t.version }

// CreatedAt returns the creation timestamp.
func (t *Trip) CreatedAt() time.Time { return t.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (t *Trip) UpdatedAt() time.Time { return t.updatedAt }

// --- Behavior ---

// AssignDriver transitions the trip from requested to driver_assigned.
func (t *Trip) AssignDriver(driverID uuid.UUID) error {
	if !t.status.CanTransitionTo(StatusDriverAssigned) {
		return domain.NewInvalidStateError(string(t.status), string(StatusDriverAssigned))
	}
	if driverID == uuid.Nil {
		return domain.NewValidationError("driver ID is required")
	}
	now := time.Now().UTC()
	t.driverID = &driverID
	t.status = StatusDriverAssigned
	t.assignedAt = &now
	t.updatedAt = now
	return nil
}

// Complete transitions the trip from driver_assigned to completed.
func (t *Trip) Complete() error {
	if !t.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(t.status), string(StatusCompleted))
	}
	now := time.Now().UTC()
	t.status = StatusCompleted
	t.completedAt = &now
	t.updatedAt = now
	return nil
}

// Cancel transitions the trip to cancelled if it is not in a terminal state.
func (t *Trip) Cancel(reason string) error {
	if !t.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(t.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	t.status = StatusCancelled
	t.cancelNote = reason
	t.cancelledAt = &now
	t.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (t *Trip) IncrementVersion() {
	t.version++
	t.updatedAt = time.Now().UTC()
}
