package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/openride/rideapi/internal/domain"
)

// UsersRepository provides persistence helpers for accounts and driver profiles.
type UsersRepository struct {
	db Querier
}

const userColumns = `
    id,
    display_name,
    avatar_url,
    passenger_rating,
    passenger_rating_count,
    created_at,
    updated_at
`

// UserCreateParams bundles the fields required to register an account.
type UserCreateParams struct {
	ID          string
	DisplayName string
	AvatarURL   *string
}

// Create inserts a new account row.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	query := `
        INSERT INTO users (id, display_name, avatar_url)
        VALUES ($1,$2,$3)
        RETURNING ` + userColumns

	return scanUser(r.db.QueryRow(ctx, query, params.ID, params.DisplayName, params.AvatarURL))
}

// GetByID fetches an account by its identifier.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// DriverProfileParams bundles the optional vehicle fields of a driver profile.
type DriverProfileParams struct {
	UserID       string
	LicensePlate *string
	VehicleModel *string
}

// CreateDriverProfile attaches a driver profile to an existing account.
func (r *UsersRepository) CreateDriverProfile(ctx context.Context, params DriverProfileParams) (domain.Driver, error) {
	query := `
        INSERT INTO drivers (user_id, license_plate, vehicle_model)
        VALUES ($1,$2,$3)
        RETURNING user_id, license_plate, vehicle_model, rating, rating_count, created_at
    `
	var driver domain.Driver
	err := r.db.QueryRow(ctx, query, params.UserID, params.LicensePlate, params.VehicleModel).Scan(
		&driver.UserID,
		&driver.LicensePlate,
		&driver.VehicleModel,
		&driver.Rating.Average,
		&driver.Rating.Count,
		&driver.CreatedAt,
	)
	if err != nil {
		return domain.Driver{}, err
	}
	return driver, nil
}

// GetDriverProfile fetches the driver profile for an account, if any.
func (r *UsersRepository) GetDriverProfile(ctx context.Context, userID string) (domain.Driver, error) {
	query := `
        SELECT user_id, license_plate, vehicle_model, rating, rating_count, created_at
        FROM drivers WHERE user_id = $1
    `
	var driver domain.Driver
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&driver.UserID,
		&driver.LicensePlate,
		&driver.VehicleModel,
		&driver.Rating.Average,
		&driver.Rating.Count,
		&driver.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Driver{}, ErrNotFound
		}
		return domain.Driver{}, err
	}
	return driver, nil
}

// UpdateDriverAggregate persists a recomputed driver-side rating summary.
// The boolean reports whether a profile row was actually touched; a trip can
// reference a driver whose profile has since been removed.
func (r *UsersRepository) UpdateDriverAggregate(ctx context.Context, userID string, agg domain.RatingAggregate) (bool, error) {
	query := `UPDATE drivers SET rating = $2, rating_count = $3 WHERE user_id = $1`
	tag, err := r.db.Exec(ctx, query, userID, agg.Average, agg.Count)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdatePassengerAggregate persists a recomputed passenger-side rating
// summary on the account row itself.
func (r *UsersRepository) UpdatePassengerAggregate(ctx context.Context, userID string, agg domain.RatingAggregate) (bool, error) {
	query := `
        UPDATE users
        SET passenger_rating = $2, passenger_rating_count = $3, updated_at = now()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, userID, agg.Average, agg.Count)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.DisplayName,
		&user.AvatarURL,
		&user.Passenger.Average,
		&user.Passenger.Count,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}
