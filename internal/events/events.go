package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics this service produces to and consumes from.
const (
	TopicRideEvents     = "ride.events"
	TopicDispatchEvents = "dispatch.events"
)

// CloudEvent type identifiers.
const (
	RideRequested  = "ride.requested"
	RideCancelled  = "ride.cancelled"
	RideCompleted  = "ride.completed"
	DriverAssigned = "dispatch.driver_assigned"
)

// EventSource identifies this service in published CloudEvents.
const EventSource = "service-ride"

// RideRequestedEvent is published when a rider confirms a quoted trip.
type RideRequestedEvent struct {
	TripID           uuid.UUID `json:"trip_id"`
	TripNumber       string    `json:"trip_number"`
	RiderID          uuid.UUID `json:"rider_id"`
	DestinationLabel string    `json:"destination_label"`
	VehicleClassID   string    `json:"vehicle_class_id"`
	QuotedAmount     float64   `json:"quoted_amount"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// RideCancelledEvent is published when a rider abandons a dispatching trip.
type RideCancelledEvent struct {
	TripID     uuid.UUID `json:"trip_id"`
	TripNumber string    `json:"trip_number"`
	RiderID    uuid.UUID `json:"rider_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RideCompletedEvent is published when a trip finishes.
type RideCompletedEvent struct {
	TripID     uuid.UUID  `json:"trip_id"`
	TripNumber string     `json:"trip_number"`
	RiderID    uuid.UUID  `json:"rider_id"`
	DriverID   *uuid.UUID `json:"driver_id,omitempty"`
	Amount     float64    `json:"amount"`
	Currency   string     `json:"currency"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// DriverAssignedEvent arrives from the dispatch service when a driver takes
// the trip.
type DriverAssignedEvent struct {
	TripID     uuid.UUID `json:"trip_id"`
	DriverID   uuid.UUID `json:"driver_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
