package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/openride/rideapi/internal/domain"
)

// RatingsRepository provides persistence helpers for trip ratings.
type RatingsRepository struct {
	db Querier
}

const ratingColumns = `
    id,
    trip_id,
    rated_by,
    rated_user,
    direction,
    stars,
    comment,
    created_at
`

// Insert stores a new rating row. A violation of the (trip_id, direction)
// uniqueness constraint is reported as ErrDuplicateRating so concurrent
// submissions surface the same conflict as the advisory pre-check.
func (r *RatingsRepository) Insert(ctx context.Context, rating domain.Rating) (domain.Rating, error) {
	query := `
        INSERT INTO ratings (id, trip_id, rated_by, rated_user, direction, stars, comment)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING ` + ratingColumns

	row := r.db.QueryRow(ctx, query,
		rating.ID, rating.TripID, rating.RatedBy, rating.RatedUser, rating.Direction, rating.Stars, rating.Comment)
	stored, err := scanRating(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Rating{}, ErrDuplicateRating
		}
		return domain.Rating{}, fmt.Errorf("insert rating: %w", err)
	}
	return stored, nil
}

// GetByTripAndDirection fetches the rating for one (trip, direction) pair.
func (r *RatingsRepository) GetByTripAndDirection(ctx context.Context, tripID string, direction domain.RatingDirection) (domain.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE trip_id = $1 AND direction = $2`
	rating, err := scanRating(r.db.QueryRow(ctx, query, tripID, direction))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// StarsForUser returns every star value the user has received in one
// direction. Run inside the submission transaction it observes the row just
// inserted, which is what the aggregate recomputation relies on.
func (r *RatingsRepository) StarsForUser(ctx context.Context, userID string, direction domain.RatingDirection) ([]int, error) {
	query := `SELECT stars FROM ratings WHERE rated_user = $1 AND direction = $2`
	rows, err := r.db.Query(ctx, query, userID, direction)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stars []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		stars = append(stars, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stars, nil
}

// ListForTrip returns all ratings for a trip joined with the submitting
// actor's public identity, newest first.
func (r *RatingsRepository) ListForTrip(ctx context.Context, tripID string) ([]domain.TripRating, error) {
	query := `
        SELECT r.id, r.trip_id, r.rated_by, r.rated_user, r.direction, r.stars, r.comment, r.created_at,
               u.id, u.display_name, u.avatar_url
        FROM ratings r
        JOIN users u ON u.id = r.rated_by
        WHERE r.trip_id = $1
        ORDER BY r.created_at DESC, r.id DESC
    `
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTripRatings(rows)
}

// UserRatingsFilters narrows and pages the received-ratings listing.
type UserRatingsFilters struct {
	Direction *domain.RatingDirection
	Limit     int
	Offset    int
}

// ListForUser returns a page of ratings received by the user, newest first,
// joined with the rater's public identity.
func (r *RatingsRepository) ListForUser(ctx context.Context, userID string, filters UserRatingsFilters) ([]domain.TripRating, error) {
	query := `
        SELECT r.id, r.trip_id, r.rated_by, r.rated_user, r.direction, r.stars, r.comment, r.created_at,
               u.id, u.display_name, u.avatar_url
        FROM ratings r
        JOIN users u ON u.id = r.rated_by
        WHERE r.rated_user = $1 AND ($2::text IS NULL OR r.direction = $2)
        ORDER BY r.created_at DESC, r.id DESC
        LIMIT $3 OFFSET $4
    `
	rows, err := r.db.Query(ctx, query, userID, directionArg(filters.Direction), filters.Limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTripRatings(rows)
}

// UserRatingsSummary aggregates the full filtered set of received ratings,
// not just the returned page.
type UserRatingsSummary struct {
	Total     int64
	Average   float64
	Histogram map[int]int64
}

// SummarizeForUser computes total, mean and a star histogram over every
// rating the user has received in the optional direction.
func (r *RatingsRepository) SummarizeForUser(ctx context.Context, userID string, direction *domain.RatingDirection) (UserRatingsSummary, error) {
	query := `
        SELECT COUNT(*),
               COALESCE(AVG(stars), 0)::float8,
               COUNT(*) FILTER (WHERE stars = 1),
               COUNT(*) FILTER (WHERE stars = 2),
               COUNT(*) FILTER (WHERE stars = 3),
               COUNT(*) FILTER (WHERE stars = 4),
               COUNT(*) FILTER (WHERE stars = 5)
        FROM ratings
        WHERE rated_user = $1 AND ($2::text IS NULL OR direction = $2)
    `
	summary := UserRatingsSummary{Histogram: make(map[int]int64, 5)}
	var perStar [5]int64
	err := r.db.QueryRow(ctx, query, userID, directionArg(direction)).Scan(
		&summary.Total,
		&summary.Average,
		&perStar[0], &perStar[1], &perStar[2], &perStar[3], &perStar[4],
	)
	if err != nil {
		return UserRatingsSummary{}, fmt.Errorf("summarize ratings: %w", err)
	}
	for i, n := range perStar {
		summary.Histogram[i+1] = n
	}
	return summary, nil
}

func collectTripRatings(rows pgx.Rows) ([]domain.TripRating, error) {
	items := make([]domain.TripRating, 0)
	for rows.Next() {
		var item domain.TripRating
		var direction string
		err := rows.Scan(
			&item.ID,
			&item.TripID,
			&item.RatedBy,
			&item.RatedUser,
			&direction,
			&item.Stars,
			&item.Comment,
			&item.CreatedAt,
			&item.Rater.ID,
			&item.Rater.DisplayName,
			&item.Rater.AvatarURL,
		)
		if err != nil {
			return nil, err
		}
		item.Direction = domain.RatingDirection(direction)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var (
		rating    domain.Rating
		direction string
	)
	err := row.Scan(
		&rating.ID,
		&rating.TripID,
		&rating.RatedBy,
		&rating.RatedUser,
		&direction,
		&rating.Stars,
		&rating.Comment,
		&rating.CreatedAt,
	)
	if err != nil {
		return domain.Rating{}, err
	}
	rating.Direction = domain.RatingDirection(direction)
	return rating, nil
}

func directionArg(direction *domain.RatingDirection) *string {
	if direction == nil {
		return nil
	}
	val := string(*direction)
	return &val
}
