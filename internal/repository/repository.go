package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openride/rideapi/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicateRating indicates the (trip, direction) uniqueness constraint
// rejected an insert. The constraint, not the application pre-check, is the
// final arbiter under concurrent submissions.
var ErrDuplicateRating = errors.New("repository: duplicate rating")

// Querier is the subset of pgx operations the repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so the same repository code serves
// plain queries and transactional work.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Trips   *TripsRepository
	Ratings *RatingsRepository
	Users   *UsersRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return newWithQuerier(pool)
}

// WithTx returns a view of the repositories bound to the given transaction.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return newWithQuerier(tx)
}

func newWithQuerier(q Querier) *Repository {
	return &Repository{
		Trips:   &TripsRepository{db: q},
		Ratings: &RatingsRepository{db: q},
		Users:   &UsersRepository{db: q},
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
