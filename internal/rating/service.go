package rating

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"

	"github.com/openride/rideapi/internal/domain"
	"github.com/openride/rideapi/internal/repository"
)

const (
	maxCommentLength = 500
	defaultPageSize  = 20
	maxPageSize      = 100
)

// Service orchestrates rating submission and queries. Submission runs as one
// transaction: trip lookup, duplicate check, insert and aggregate
// recomputation commit or roll back together.
type Service struct {
	pool   *pgxpool.Pool
	repo   *repository.Repository
	logger logrus.FieldLogger
}

// NewService constructs a Service on top of the shared pool and repositories.
func NewService(pool *pgxpool.Pool, repo *repository.Repository, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{pool: pool, repo: repo, logger: logger}
}

// Submit records actorID's rating of the other participant of a completed
// trip and recomputes the rated party's aggregate in the same transaction.
func (s *Service) Submit(ctx context.Context, actorID, tripID string, stars int, comment *string) (domain.Rating, error) {
	if err := validateSubmission(actorID, tripID, stars, comment); err != nil {
		return domain.Rating{}, err
	}
	comment = normalizeComment(comment)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("begin rating transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repo := s.repo.WithTx(tx)

	trip, err := repo.Trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Rating{}, ErrTripNotFound
		}
		return domain.Rating{}, fmt.Errorf("load trip: %w", err)
	}
	if trip.Status != domain.TripCompleted {
		return domain.Rating{}, ErrTripNotCompleted
	}

	direction, ratedUser, err := inferDirection(actorID, trip)
	if err != nil {
		return domain.Rating{}, err
	}

	// Advisory only; the unique constraint decides races.
	if _, err := repo.Ratings.GetByTripAndDirection(ctx, tripID, direction); err == nil {
		return domain.Rating{}, ErrAlreadyRated
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Rating{}, fmt.Errorf("check existing rating: %w", err)
	}

	created, err := repo.Ratings.Insert(ctx, domain.Rating{
		ID:        uuid.NewString(),
		TripID:    tripID,
		RatedBy:   actorID,
		RatedUser: ratedUser,
		Direction: direction,
		Stars:     stars,
		Comment:   comment,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateRating) {
			return domain.Rating{}, ErrAlreadyRated
		}
		return domain.Rating{}, err
	}

	if err := s.recomputeAggregate(ctx, repo, ratedUser, direction); err != nil {
		return domain.Rating{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Rating{}, fmt.Errorf("commit rating transaction: %w", err)
	}
	return created, nil
}

// recomputeAggregate rebuilds the rated party's summary from the full row
// set visible inside the transaction, so it includes the just-inserted row
// and cannot drift the way incremental averaging would on retries.
func (s *Service) recomputeAggregate(ctx context.Context, repo *repository.Repository, ratedUser string, direction domain.RatingDirection) error {
	starValues, err := repo.Ratings.StarsForUser(ctx, ratedUser, direction)
	if err != nil {
		return fmt.Errorf("load ratings for aggregate: %w", err)
	}

	mean, err := stats.Mean(stats.LoadRawData(starValues))
	if err != nil {
		return fmt.Errorf("compute rating mean: %w", err)
	}
	agg := domain.RatingAggregate{
		Average: roundTwoDecimals(mean),
		Count:   int64(len(starValues)),
	}

	var updated bool
	switch direction.Category() {
	case domain.CategoryDriver:
		updated, err = repo.Users.UpdateDriverAggregate(ctx, ratedUser, agg)
	default:
		updated, err = repo.Users.UpdatePassengerAggregate(ctx, ratedUser, agg)
	}
	if err != nil {
		return fmt.Errorf("persist aggregate: %w", err)
	}
	if !updated {
		s.logger.WithFields(logrus.Fields{
			"user":      ratedUser,
			"direction": direction,
		}).Warn("rating: no aggregate row for rated user, skipping")
	}
	return nil
}

// CheckRated reports whether the actor has already rated the other
// participant of the trip, returning the existing rating if so.
func (s *Service) CheckRated(ctx context.Context, actorID, tripID string) (*domain.Rating, error) {
	if actorID == "" || tripID == "" {
		return nil, fmt.Errorf("%w: actor id and trip id are required", ErrInvalidInput)
	}

	trip, err := s.repo.Trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("load trip: %w", err)
	}

	direction, _, err := inferDirection(actorID, trip)
	if err != nil {
		return nil, err
	}

	rating, err := s.repo.Ratings.GetByTripAndDirection(ctx, tripID, direction)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load rating: %w", err)
	}
	return &rating, nil
}

// ListForTrip returns all ratings submitted for a trip, newest first.
func (s *Service) ListForTrip(ctx context.Context, tripID string) ([]domain.TripRating, error) {
	if tripID == "" {
		return nil, fmt.Errorf("%w: trip id is required", ErrInvalidInput)
	}
	if _, err := s.repo.Trips.GetByID(ctx, tripID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("load trip: %w", err)
	}
	return s.repo.Ratings.ListForTrip(ctx, tripID)
}

// Summary describes the full filtered set of ratings a user has received.
type Summary struct {
	Total     int64
	Average   float64
	Histogram map[int]int64
}

// UserRatingsPage is one page of received ratings plus the full-set summary.
type UserRatingsPage struct {
	Summary  Summary
	Ratings  []domain.TripRating
	Page     int
	PageSize int
}

// ListForUser returns a page of ratings received by userID, optionally
// filtered by category. The summary covers the whole filtered set, so it is
// stable across pages.
func (s *Service) ListForUser(ctx context.Context, userID string, category *domain.RatingCategory, page, pageSize int) (UserRatingsPage, error) {
	if userID == "" {
		return UserRatingsPage{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	} else if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	if _, err := s.repo.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return UserRatingsPage{}, ErrUserNotFound
		}
		return UserRatingsPage{}, fmt.Errorf("load user: %w", err)
	}

	var direction *domain.RatingDirection
	if category != nil {
		d := category.Direction()
		direction = &d
	}

	summary, err := s.repo.Ratings.SummarizeForUser(ctx, userID, direction)
	if err != nil {
		return UserRatingsPage{}, err
	}

	items, err := s.repo.Ratings.ListForUser(ctx, userID, repository.UserRatingsFilters{
		Direction: direction,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	})
	if err != nil {
		return UserRatingsPage{}, err
	}

	return UserRatingsPage{
		Summary: Summary{
			Total:     summary.Total,
			Average:   roundTwoDecimals(summary.Average),
			Histogram: summary.Histogram,
		},
		Ratings:  items,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ParseCategory converts the wire value of the category filter.
func ParseCategory(raw string) (*domain.RatingCategory, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return nil, nil
	case string(domain.CategoryDriver):
		c := domain.CategoryDriver
		return &c, nil
	case string(domain.CategoryPassenger):
		c := domain.CategoryPassenger
		return &c, nil
	default:
		return nil, fmt.Errorf("%w: category must be driver or passenger", ErrInvalidInput)
	}
}

func validateSubmission(actorID, tripID string, stars int, comment *string) error {
	if actorID == "" {
		return fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}
	if tripID == "" {
		return fmt.Errorf("%w: trip id is required", ErrInvalidInput)
	}
	if stars < 1 || stars > 5 {
		return fmt.Errorf("%w: stars must be an integer between 1 and 5", ErrInvalidInput)
	}
	if comment != nil && utf8.RuneCountInString(*comment) > maxCommentLength {
		return fmt.Errorf("%w: comment must be at most %d characters", ErrInvalidInput, maxCommentLength)
	}
	return nil
}

// inferDirection resolves who is rating whom from the actor's role on the
// trip. Order matters: the driver check wins should the ids ever coincide.
func inferDirection(actorID string, trip domain.Trip) (domain.RatingDirection, string, error) {
	if trip.DriverID != nil && actorID == *trip.DriverID {
		if trip.PassengerID == "" {
			return "", "", ErrNoRatedParty
		}
		return domain.DriverToPassenger, trip.PassengerID, nil
	}
	if actorID == trip.PassengerID {
		if trip.DriverID == nil || *trip.DriverID == "" {
			return "", "", ErrNoRatedParty
		}
		return domain.PassengerToDriver, *trip.DriverID, nil
	}
	return "", "", ErrNotParticipant
}

func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func roundTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}
