package trip

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL trip repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const tripColumns = `
	id, user_id, label,
	origin_name, origin_lat, origin_lon,
	travel_date, start_hour, end_hour,
	dimension, max_distance_miles, notes,
	created_at, updated_at`

// GetByUserAndID retrieves a trip by user ID and trip ID.
func (r *PostgresRepository) GetByUserAndID(ctx context.Context, userID, tripID string) (*Trip, error) {
	query := `SELECT` + tripColumns + `
		FROM trips
		WHERE id = $1 AND user_id = $2`

	var t Trip
	err := r.pool.QueryRow(ctx, query, tripID, userID).Scan(
		&t.ID, &t.UserID, &t.Label,
		&t.OriginName, &t.OriginLat, &t.OriginLon,
		&t.TravelDate, &t.StartHour, &t.EndHour,
		&t.Dimension, &t.MaxDistanceMiles, &t.Notes,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List retrieves all trips for a user with pagination.
func (r *PostgresRepository) List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results.
	fetchLimit := limit + 1

	query := `SELECT` + tripColumns + `
		FROM trips
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*Trip
	for rows.Next() {
		var t Trip
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Label,
			&t.OriginName, &t.OriginLat, &t.OriginLon,
			&t.TravelDate, &t.StartHour, &t.EndHour,
			&t.Dimension, &t.MaxDistanceMiles, &t.Notes,
			&t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		trips = append(trips, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{Items: trips}
	if len(trips) > limit {
		result.Items = trips[:limit]
		result.NextCursor = trips[limit-1].ID
	}
	return result, nil
}

// Create creates a new trip.
func (r *PostgresRepository) Create(ctx context.Context, t *Trip) error {
	query := `
		INSERT INTO trips (
			id, user_id, label,
			origin_name, origin_lat, origin_lon,
			travel_date, start_hour, end_hour,
			dimension, max_distance_miles, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.Label,
		t.OriginName, t.OriginLat, t.OriginLon,
		t.TravelDate, t.StartHour, t.EndHour,
		t.Dimension, t.MaxDistanceMiles, t.Notes,
		t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// Update updates an existing trip scoped to its owner.
func (r *PostgresRepository) Update(ctx context.Context, t *Trip) error {
	query := `
		UPDATE trips SET
			label = $3,
			origin_name = $4,
			origin_lat = $5,
			origin_lon = $6,
			travel_date = $7,
			start_hour = $8,
			end_hour = $9,
			dimension = $10,
			max_distance_miles = $11,
			notes = $12,
			updated_at = $13
		WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.Label,
		t.OriginName, t.OriginLat, t.OriginLon,
		t.TravelDate, t.StartHour, t.EndHour,
		t.Dimension, t.MaxDistanceMiles, t.Notes,
		t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTripNotFound
	}
	return nil
}

// Delete deletes a trip owned by the user.
func (r *PostgresRepository) Delete(ctx context.Context, userID, tripID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM trips WHERE id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTripNotFound
	}
	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
