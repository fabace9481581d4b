package trip

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Intended for testing; production uses PostgresRepository.
type InMemoryRepository struct {
	mu    sync.RWMutex
	trips map[string]*Trip
}

// NewInMemoryRepository creates a new in-memory trip repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{trips: make(map[string]*Trip)}
}

// GetByUserAndID retrieves a trip by user ID and trip ID.
func (r *InMemoryRepository) GetByUserAndID(_ context.Context, userID, tripID string) (*Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trips[tripID]
	if !ok || t.UserID != userID {
		return nil, ErrTripNotFound
	}
	cpy := *t
	return &cpy, nil
}

// List retrieves all trips for a user with pagination, newest first.
func (r *InMemoryRepository) List(_ context.Context, userID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var trips []*Trip
	for _, t := range r.trips {
		if t.UserID == userID {
			cpy := *t
			trips = append(trips, &cpy)
		}
	}
	sort.Slice(trips, func(i, j int) bool {
		return trips[i].CreatedAt.After(trips[j].CreatedAt)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{Items: trips}
	if len(trips) > limit {
		result.Items = trips[:limit]
		result.NextCursor = trips[limit-1].ID
	}
	return result, nil
}

// Create creates a new trip.
func (r *InMemoryRepository) Create(_ context.Context, t *Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *t
	r.trips[t.ID] = &cpy
	return nil
}

// Update updates an existing trip.
func (r *InMemoryRepository) Update(_ context.Context, t *Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.trips[t.ID]
	if !ok || existing.UserID != t.UserID {
		return ErrTripNotFound
	}
	cpy := *t
	r.trips[t.ID] = &cpy
	return nil
}

// Delete deletes a trip owned by the user.
func (r *InMemoryRepository) Delete(_ context.Context, userID, tripID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[tripID]
	if !ok || t.UserID != userID {
		return ErrTripNotFound
	}
	delete(r.trips, tripID)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
