package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openride/rideapi/internal/domain"
)

// TripsRepository provides persistence helpers for trip entities.
type TripsRepository struct {
	db Querier
}

const tripColumns = `
    id,
    passenger_id,
    driver_id,
    status,
    pickup_address,
    dropoff_address,
    requested_at,
    completed_at
`

// TripCreateParams bundles the fields required to request a trip.
type TripCreateParams struct {
	ID             string
	PassengerID    string
	DriverID       *string
	PickupAddress  string
	DropoffAddress string
}

// Create inserts a new trip row in REQUESTED state and returns the stored entity.
func (r *TripsRepository) Create(ctx context.Context, params TripCreateParams) (domain.Trip, error) {
	query := `
        INSERT INTO trips (id, passenger_id, driver_id, pickup_address, dropoff_address)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING ` + tripColumns

	row := r.db.QueryRow(ctx, query, params.ID, params.PassengerID, params.DriverID, params.PickupAddress, params.DropoffAddress)
	return scanTrip(row)
}

// GetByID fetches a trip by its identifier.
func (r *TripsRepository) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	trip, err := scanTrip(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Trip{}, ErrNotFound
		}
		return domain.Trip{}, err
	}
	return trip, nil
}

// Accept assigns a driver to a REQUESTED trip and moves it to IN_PROGRESS.
// ErrNotFound is returned when the trip is missing or no longer acceptable.
func (r *TripsRepository) Accept(ctx context.Context, tripID, driverID string) (domain.Trip, error) {
	query := `
        UPDATE trips
        SET driver_id = $2, status = $3
        WHERE id = $1 AND status = $4 AND driver_id IS NULL
        RETURNING ` + tripColumns

	trip, err := scanTrip(r.db.QueryRow(ctx, query, tripID, driverID, domain.TripInProgress, domain.TripRequested))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Trip{}, ErrNotFound
		}
		return domain.Trip{}, err
	}
	return trip, nil
}

// Complete moves an IN_PROGRESS trip to COMPLETED and stamps completed_at.
// ErrNotFound is returned when the trip is missing or not in progress.
func (r *TripsRepository) Complete(ctx context.Context, tripID string) (domain.Trip, error) {
	query := `
        UPDATE trips
        SET status = $2, completed_at = now()
        WHERE id = $1 AND status = $3
        RETURNING ` + tripColumns

	trip, err := scanTrip(r.db.QueryRow(ctx, query, tripID, domain.TripCompleted, domain.TripInProgress))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Trip{}, ErrNotFound
		}
		return domain.Trip{}, err
	}
	return trip, nil
}

func scanTrip(row pgx.Row) (domain.Trip, error) {
	var (
		trip        domain.Trip
		status      string
		completedAt *time.Time
	)

	err := row.Scan(
		&trip.ID,
		&trip.PassengerID,
		&trip.DriverID,
		&status,
		&trip.PickupAddress,
		&trip.DropoffAddress,
		&trip.RequestedAt,
		&completedAt,
	)
	if err != nil {
		return domain.Trip{}, err
	}

	trip.Status = domain.TripStatus(status)
	trip.CompletedAt = completedAt
	return trip, nil
}
