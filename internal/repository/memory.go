package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/intu-mobility/service-ride/internal/domain/trip"
	"github.com/intu-mobility/service-ride/internal/platform/domain"
)

// InMemoryTripRepository is a map-backed trip.Repository used in tests and
// local development without Postgres.
type InMemoryTripRepository struct {
	mu    sync.RWMutex
	trips map[uuid.UUID]*trip.Trip
	order []uuid.UUID
}

// NewInMemoryTripRepository creates an empty in-memory repository.
func NewInMemoryTripRepository() *InMemoryTripRepository {
	return &InMemoryTripRepository{trips: make(map[uuid.UUID]*trip.Trip)}
}

func (r *InMemoryTripRepository) FindByID(_ context.Context, id uuid.UUID) (*trip.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trips[id]
	if !ok {
		return nil, domain.NewNotFoundError("Trip", id.String())
	}
	return t, nil
}

func (r *InMemoryTripRepository) FindByRiderID(_ context.Context, riderID uuid.UUID, status trip.Status, page, limit int) ([]*trip.Trip, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*trip.Trip
	for _, id := range r.order {
		t := r.trips[id]
		if t.RiderID() != riderID {
			continue
		}
		if status != "" && t.Status() != status {
			continue
		}
		matched = append(matched, t)
	}
	sortNewestFirst(matched)
	total := int64(len(matched))
	return paginate(matched, page, limit), total, nil
}

func (r *InMemoryTripRepository) StatsByRiderID(_ context.Context, riderID uuid.UUID) (trip.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats trip.Stats
	for _, t := range r.trips {
		if t.RiderID() != riderID {
			continue
		}
		stats.TotalTrips++
		if t.Status() == trip.StatusCompleted {
			stats.CompletedTrips++
			stats.TotalSpent += t.QuotedAmount()
		}
	}
	return stats, nil
}

func (r *InMemoryTripRepository) ListAll(_ context.Context, page, limit int) ([]*trip.Trip, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*trip.Trip, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.trips[id])
	}
	sortNewestFirst(all)
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *InMemoryTripRepository) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, t := range r.trips {
		counts[t.Status().String()]++
	}
	return counts, nil
}

func (r *InMemoryTripRepository) Save(_ context.Context, t *trip.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.trips[t.ID()]; exists {
		return domain.NewConflictError("trip already exists")
	}
	r.trips[t.ID()] = t
	r.order = append(r.order, t.ID())
	return nil
}

func (r *InMemoryTripRepository) Update(_ context.Context, t *trip.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.trips[t.ID()]
	if !ok {
		return domain.NewNotFoundError("Trip", t.ID().String())
	}
	if stored != t && stored.Version() >= t.Version() {
		return domain.NewConflictError("trip was modified by another transaction")
	}
	r.trips[t.ID()] = t
	return nil
}

func sortNewestFirst(trips []*trip.Trip) {
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].CreatedAt().After(trips[j].CreatedAt())
	})
}

func paginate(trips []*trip.Trip, page, limit int) []*trip.Trip {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = len(trips)
	}
	start := (page - 1) * limit
	if start >= len(trips) {
		return nil
	}
	end := start + limit
	if end > len(trips) {
		end = len(trips)
	}
	return trips[start:end]
}
