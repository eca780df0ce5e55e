package trip

import (
	"context"

	"github.com/google/uuid"
)

// Stats summarizes a rider's trip history for the activity screen.
type Stats struct {
	TotalTrips     int64   `json:"total_trips"`
	CompletedTrips int64   `json:"completed_trips"`
	TotalSpent     float64 `json:"total_spent"`
}

// Repository defines the persistence contract for trip aggregates.
type Repository interface {
	// FindByID retrieves a trip by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Trip, error)

	// FindByRiderID retrieves trips for a rider, newest first, optionally
	// filtered by status (empty string means all), with pagination.
	FindByRiderID(ctx context.Context, riderID uuid.UUID, status Status, page, limit int) ([]*Trip, int64, error)

	// StatsByRiderID returns the rider's trip totals. TotalSpent sums
	// quoted amounts of completed trips only.
	StatsByRiderID(ctx context.Context, riderID uuid.UUID) (Stats, error)

	// ListAll retrieves all trips with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Trip, int64, error)

	// CountByStatus returns trip counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new trip.
	Save(ctx context.Context, t *Trip) error

	// Update persists changes to an existing trip with optimistic locking.
	Update(ctx context.Context, t *Trip) error
}
