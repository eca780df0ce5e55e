package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/domain/route"
	"github.com/intu-mobility/service-ride/internal/domain/trip"
	"github.com/intu-mobility/service-ride/internal/platform/domain"
)

// TripModel is the GORM model for the trips table.
type TripModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TripNumber       string          `gorm:"uniqueIndex;not null;size:20"`
	RiderID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	DriverID         *uuid.UUID      `gorm:"type:uuid;index"`
	Status           string          `gorm:"not null;size:30;index"`
	DestinationLabel string          `gorm:"not null;size:500"`
	Origin           json.RawMessage `gorm:"type:jsonb;not null"`
	Destination      json.RawMessage `gorm:"type:jsonb;not null"`
	RoutePolyline    string          `gorm:"type:text"`
	RouteMetrics     json.RawMessage `gorm:"type:jsonb"`
	VehicleClassID   string          `gorm:"not null;size:30"`
	VehicleClassName string          `gorm:"not null;size:50"`
	QuotedAmount     float64         `gorm:"not null"`
	Currency         string          `gorm:"not null;size:3;default:'USD'"`
	RequestedAt      time.Time       `gorm:"not null"`
	AssignedAt       *time.Time      `gorm:""`
	CompletedAt      *time.Time      `gorm:""`
	CancelledAt      *time.Time      `gorm:""`
	CancelNote       string          `gorm:"size:500"`
	Version          int64           `gorm:"not null;default:1"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TripModel) TableName() string {
	return "trips"
}

// GormTripRepository is the GORM-based implementation of trip.Repository.
type GormTripRepository struct {
	db *gorm.DB
}

// NewGormTripRepository creates a new GormTripRepository.
func NewGormTripRepository(db *gorm.DB) *GormTripRepository {
	return &GormTripRepository{db: db}
}

// FindByID retrieves a trip by its unique identifier.
func (r *GormTripRepository) FindByID(ctx context.Context, id uuid.UUID) (*trip.Trip, error) {
	var model TripModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Trip", id.String())
		}
		return nil, fmt.Errorf("failed to find trip by ID: %w", err)
	}
	return toDomainTrip(&model)
}

// FindByRiderID retrieves trips for a rider, newest first, optionally
// filtered by status.
func (r *GormTripRepository) FindByRiderID(ctx context.Context, riderID uuid.UUID, status trip.Status, page, limit int) ([]*trip.Trip, int64, error) {
	query := r.db.WithContext(ctx).Model(&TripModel{}).Where("rider_id = ?", riderID)
	if status != "" {
		query = query.Where("status = ?", status.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count rider trips: %w", err)
	}

	var models []TripModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find rider trips: %w", err)
	}

	trips, err := toDomainTrips(models)
	if err != nil {
		return nil, 0, err
	}
	return trips, total, nil
}

// StatsByRiderID returns the rider's trip totals. TotalSpent sums quoted
// amounts of completed trips only.
func (r *GormTripRepository) StatsByRiderID(ctx context.Context, riderID uuid.UUID) (trip.Stats, error) {
	var stats trip.Stats

	if err := r.db.WithContext(ctx).Model(&TripModel{}).
		Where("rider_id = ?", riderID).
		Count(&stats.TotalTrips).Error; err != nil {
		return trip.Stats{}, fmt.Errorf("failed to count trips: %w", err)
	}

	row := r.db.WithContext(ctx).Model(&TripModel{}).
		Select("count(*) as completed, coalesce(sum(quoted_amount), 0) as spent").
		Where("rider_id = ? AND status = ?", riderID, trip.StatusCompleted.String()).
		Row()
	if err := row.Scan(&stats.CompletedTrips, &stats.TotalSpent); err != nil {
		return trip.Stats{}, fmt.Errorf("failed to aggregate completed trips: %w", err)
	}

	return stats, nil
}

// ListAll retrieves all trips with pagination (admin).
func (r *GormTripRepository) ListAll(ctx context.Context, page, limit int) ([]*trip.Trip, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&TripModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	var models []TripModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}

	trips, err := toDomainTrips(models)
	if err != nil {
		return nil, 0, err
	}
	return trips, total, nil
}

// CountByStatus returns trip counts grouped by status (admin).
func (r *GormTripRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&TripModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new trip.
func (r *GormTripRepository) Save(ctx context.Context, t *trip.Trip) error {
	model, err := toTripModel(t)
	if err != nil {
		return fmt.Errorf("failed to convert trip to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save trip: %w", err)
	}
	return nil
}

// Update persists changes to an existing trip with optimistic locking.
func (r *GormTripRepository) Update(ctx context.Context, t *trip.Trip) error {
	model, err := toTripModel(t)
	if err != nil {
		return fmt.Errorf("failed to convert trip to model: %w", err)
	}

	// Only update if the stored version matches the version before
	// IncrementVersion was called.
	expectedVersion := t.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&TripModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"driver_id":    model.DriverID,
			"status":       model.Status,
			"assigned_at":  model.AssignedAt,
			"completed_at": model.CompletedAt,
			"cancelled_at": model.CancelledAt,
			"cancel_note":  model.CancelNote,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update trip: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("trip was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toTripModel(t *trip.Trip) (*TripModel, error) {
	originJSON, err := json.Marshal(t.Origin())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal origin: %w", err)
	}

	destinationJSON, err := json.Marshal(t.Destination())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal destination: %w", err)
	}

	var metricsJSON json.RawMessage
	if t.RouteMetrics() != nil {
		metricsJSON, err = json.Marshal(t.RouteMetrics())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal route metrics: %w", err)
		}
	}

	return &TripModel{
		ID:               t.ID(),
		TripNumber:       t.TripNumber(),
		RiderID:          t.RiderID(),
		DriverID:         t.DriverID(),
		Status:           t.Status().String(),
		DestinationLabel: t.DestinationLabel(),
		Origin:           originJSON,
		Destination:      destinationJSON,
		RoutePolyline:    t.RoutePolyline(),
		RouteMetrics:     metricsJSON,
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
		UpdatedAt:        t.UpdatedAt(),
	}, nil
}

func toDomainTrip(m *TripModel) (*trip.Trip, error) {
	var origin geo.Coordinate
	if err := json.Unmarshal(m.Origin, &origin); err != nil {
		return nil, fmt.Errorf("failed to unmarshal origin: %w", err)
	}

	var destination geo.Coordinate
	if err := json.Unmarshal(m.Destination, &destination); err != nil {
		return nil, fmt.Errorf("failed to unmarshal destination: %w", err)
	}

	var metrics *route.Metrics
	if len(m.RouteMetrics) > 0 {
		metrics = &route.Metrics{}
		if err := json.Unmarshal(m.RouteMetrics, metrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal route metrics: %w", err)
		}
	}

	return trip.ReconstructTrip(
		m.ID,
		m.TripNumber,
		m.RiderID,
		m.DriverID,
		trip.Status(m.Status),
		m.DestinationLabel,
		origin,
		destination,
		m.RoutePolyline,
		metrics,
		m.VehicleClassID,
		m.VehicleClassName,
		m.QuotedAmount,
		m.Currency,
		m.RequestedAt,
		m.AssignedAt,
		m.CompletedAt,
		m.CancelledAt,
		m.CancelNote,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainTrips(models []TripModel) ([]*trip.Trip, error) {
	trips := make([]*trip.Trip, len(models))
	for i := range models {
		t, err := toDomainTrip(&models[i])
		if err != nil {
			return nil, err
		}
		trips[i] = t
	}
	return trips, nil
}
