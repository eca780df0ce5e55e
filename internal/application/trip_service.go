package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/domain/route"
	"github.com/intu-mobility/service-ride/internal/domain/trip"
	"github.com/intu-mobility/service-ride/internal/events"
	"github.com/intu-mobility/service-ride/internal/platform/domain"
	"github.com/intu-mobility/service-ride/internal/platform/kafka"
)

// Currency every quote is denominated in.
const CurrencyUSD = "USD"

// TripDTO is the response representation of a trip.
type TripDTO struct {
	ID               uuid.UUID      `json:"id"`
	TripNumber       string         `json:"trip_number"`
	RiderID          uuid.UUID      `json:"rider_id"`
	DriverID         *uuid.UUID     `json:"driver_id,omitempty"`
	Status           string         `json:"status"`
	DestinationLabel string         `json:"destination_label"`
	Origin           geo.Coordinate `json:"origin"`
	Destination      geo.Coordinate `json:"destination"`
	RoutePolyline    string         `json:"route_polyline,omitempty"`
	RouteMetrics     *route.Metrics `json:"route_metrics,omitempty"`
	VehicleClassID   string         `json:"vehicle_class_id"`
	VehicleClassName string         `json:"vehicle_class_name"`
	QuotedAmount     float64        `json:"quoted_amount"`
	Currency         string         `json:"currency"`
	RequestedAt      time.Time      `json:"requested_at"`
	AssignedAt       *time.Time     `json:"assigned_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	CancelledAt      *time.Time     `json:"cancelled_at,omitempty"`
	CancelNote       string         `json:"cancel_note,omitempty"`
	Version          int64          `json:"version"`
	CreatedAt        time.Time      `json:"created_at"`
}

// RequestTripInput carries everything needed to persist a confirmed ride.
type RequestTripInput struct {
	DestinationLabel string
	Route            route.Route
	VehicleClassID   string
	VehicleClassName string
	QuotedAmount     float64
}

// TripService is the application service for the trip lifecycle: creation on
// ride confirmation, driver assignment from dispatch events, cancellation
// and the rider's history.
type TripService struct {
	repo     trip.Repository
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewTripService creates a new TripService.
func NewTripService(repo trip.Repository, producer *kafka.Producer, logger *zap.Logger) *TripService {
	return &TripService{repo: repo, producer: producer, logger: logger}
}

// RequestTrip persists a confirmed ride and announces it to dispatch.
func (s *TripService) RequestTrip(ctx context.Context, riderID uuid.UUID, input RequestTripInput) (*TripDTO, error) {
	t, err := trip.NewTrip(
		riderID,
		input.DestinationLabel,
		input.Route,
		input.VehicleClassID,
		input.VehicleClassName,
		input.QuotedAmount,
		CurrencyUSD,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save trip: %w", err)
	}

	s.publishEvent(ctx, events.RideRequested, t.ID().String(), events.RideRequestedEvent{
		TripID:           t.ID(),
		TripNumber:       t.TripNumber(),
		RiderID:          t.RiderID(),
		DestinationLabel: t.DestinationLabel(),
		VehicleClassID:   t.VehicleClassID(),
		QuotedAmount:     t.QuotedAmount(),
		Currency:         t.Currency(),
		OccurredAt:       time.Now().UTC(),
	})

	result := toTripDTO(t)
	return &result, nil
}

// AssignDriver records the driver dispatch found for the trip.
func (s *TripService) AssignDriver(ctx context.Context, tripID, driverID uuid.UUID) (*TripDTO, error) {
	t, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if err := t.AssignDriver(driverID); err != nil {
		return nil, err
	}

	t.IncrementVersion()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	result := toTripDTO(t)
	return &result, nil
}

// CancelTrip cancels the rider's own trip.
func (s *TripService) CancelTrip(ctx context.Context, tripID, riderID uuid.UUID, reason string) (*TripDTO, error) {
	t, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if t.RiderID() != riderID {
		return nil, domain.NewForbiddenError("trip belongs to another rider")
	}

	if err := t.Cancel(reason); err != nil {
		return nil, err
	}

	t.IncrementVersion()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.RideCancelled, t.ID().String(), events.RideCancelledEvent{
		TripID:     t.ID(),
		TripNumber: t.TripNumber(),
		RiderID:    t.RiderID(),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})

	result := toTripDTO(t)
	return &result, nil
}

// CompleteTrip marks the trip finished.
func (s *TripService) CompleteTrip(ctx context.Context, tripID uuid.UUID) (*TripDTO, error) {
	t, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if err := t.Complete(); err != nil {
		return nil, err
	}

	t.IncrementVersion()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.RideCompleted, t.ID().String(), events.RideCompletedEvent{
		TripID:     t.ID(),
		TripNumber: t.TripNumber(),
		RiderID:    t.RiderID(),
		DriverID:   t.DriverID(),
		Amount:     t.QuotedAmount(),
		Currency:   t.Currency(),
		OccurredAt: time.Now().UTC(),
	})

	result := toTripDTO(t)
	return &result, nil
}

// GetTrip returns one trip, restricted to its rider.
func (s *TripService) GetTrip(ctx context.Context, tripID, riderID uuid.UUID) (*TripDTO, error) {
	t, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if t.RiderID() != riderID {
		return nil, domain.NewForbiddenError("trip belongs to another rider")
	}

	result := toTripDTO(t)
	return &result, nil
}

// ListTrips returns the rider's history, newest first.
func (s *TripService) ListTrips(ctx context.Context, riderID uuid.UUID, status string, page, limit int) ([]TripDTO, int64, error) {
	var st trip.Status
	if status != "" {
		parsed, err := trip.ParseStatus(status)
		if err != nil {
			return nil, 0, err
		}
		st = parsed
	}

	trips, total, err := s.repo.FindByRiderID(ctx, riderID, st, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]TripDTO, len(trips))
	for i, t := range trips {
		dtos[i] = toTripDTO(t)
	}
	return dtos, total, nil
}

// GetStats returns the rider's trip totals.
func (s *TripService) GetStats(ctx context.Context, riderID uuid.UUID) (trip.Stats, error) {
	return s.repo.StatsByRiderID(ctx, riderID)
}

// ListAllTrips returns every trip, for operations staff.
func (s *TripService) ListAllTrips(ctx context.Context, page, limit int) ([]TripDTO, int64, error) {
	trips, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]TripDTO, len(trips))
	for i, t := range trips {
		dtos[i] = toTripDTO(t)
	}
	return dtos, total, nil
}

// CountByStatus returns trip counts per status, for operations staff.
func (s *TripService) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountByStatus(ctx)
}

// publishEvent wraps the payload in a CloudEvent and publishes it. Publish
// failures are logged but never fail the use case.
func (s *TripService) publishEvent(ctx context.Context, eventType, key string, payload any) {
	if s.producer == nil {
		return
	}
	evt, err := kafka.NewCloudEvent(events.EventSource, eventType, payload)
	if err != nil {
		s.logger.Error("failed to build cloud event",
			zap.String("type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicRideEvents, evt); err != nil {
		s.logger.Error("failed to publish ride event",
			zap.String("type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func toTripDTO(t *trip.Trip) TripDTO {
	return TripDTO{
		ID:               t.ID(),
		TripNumber:       t.TripNumber(),
		RiderID:          t.RiderID(),
		DriverID:         t.DriverID(),
		Status:           t.Status().String(),
		DestinationLabel: t.DestinationLabel(),
		Origin:           t.Origin(),
		Destination:      t.Destination(),
		RoutePolyline:    t.RoutePolyline(),
		RouteMetrics:     t.RouteMetrics(),
		VehicleClassID:   t.VehicleClassID(),
		VehicleClassName: t.VehicleClassName(),
		QuotedAmount:     t.QuotedAmount(),
		Currency:         t.Currency(),
		RequestedAt:      t.RequestedAt(),
		AssignedAt:       t.AssignedAt(),
		CompletedAt:      t.CompletedAt(),
		CancelledAt:      t.CancelledAt(),
		CancelNote:       t.CancelNote(),
		Version:          t.Version(),
		CreatedAt:        t.CreatedAt(),
	}
}
