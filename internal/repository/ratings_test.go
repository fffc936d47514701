package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/openride/rideapi/internal/domain"
)

func insertRating(t testing.TB, env *testEnv, tripID, ratedBy, ratedUser string, direction domain.RatingDirection, stars int, comment *string) domain.Rating {
	t.Helper()
	rating, err := env.repository.Ratings.Insert(env.ctx, domain.Rating{
		ID:        uuid.NewString(),
		TripID:    tripID,
		RatedBy:   ratedBy,
		RatedUser: ratedUser,
		Direction: direction,
		Stars:     stars,
		Comment:   comment,
	})
	if err != nil {
		t.Fatalf("insert rating: %v", err)
	}
	return rating
}

func TestRatingsRepository_InsertAndGet(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	driver := mustCreateDriver(t, env, "Dana")
	passenger := mustCreateUser(t, env, "Pat")
	trip := mustCompletedTrip(t, env, driver.ID, passenger.ID)

	comment := "smooth ride"
	stored := insertRating(t, env, trip.ID, passenger.ID, driver.ID, domain.PassengerToDriver, 5, &comment)
	if stored.Stars != 5 || stored.Comment == nil || *stored.Comment != comment {
		t.Fatalf("stored rating = %+v", stored)
	}
	if stored.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	got, err := env.repository.Ratings.GetByTripAndDirection(env.ctx, trip.ID, domain.PassengerToDriver)
	if err != nil {
		t.Fatalf("GetByTripAndDirection: %v", err)
	}
	if got.ID != stored.ID || got.RatedUser != driver.ID {
		t.Fatalf("loaded rating = %+v, want id %s", got, stored.ID)
	}

	if _, err := env.repository.Ratings.GetByTripAndDirection(env.ctx, trip.ID, domain.DriverToPassenger); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unrated direction, got %v", err)
	}
}

func TestRatingsRepository_DuplicateDirection(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	driver := mustCreateDriver(t, env, "Dana")
	passenger := mustCreateUser(t, env, "Pat")
	trip := mustCompletedTrip(t, env, driver.ID, passenger.ID)

	insertRating(t, env, trip.ID, passenger.ID, driver.ID, domain.PassengerToDriver, 4, nil)

	_, err := env.repository.Ratings.Insert(env.ctx, domain.Rating{
		ID:        uuid.NewString(),
		TripID:    trip.ID,
		RatedBy:   passenger.ID,
		RatedUser: driver.ID,
		Direction: domain.PassengerToDriver,
		Stars:     2,
	})
	if !errors.Is(err, ErrDuplicateRating) {
		t.Fatalf("expected ErrDuplicateRating, got %v", err)
	}

	// The opposite direction on the same trip is still open.
	insertRating(t, env, trip.ID, driver.ID, passenger.ID, domain.DriverToPassenger, 5, nil)
}

func TestRatingsRepository_StarsForUser(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	driver := mustCreateDriver(t, env, "Dana")
	p1 := mustCreateUser(t, env, "Pat")
	p2 := mustCreateUser(t, env, "Quinn")

	t1 := mustCompletedTrip(t, env, driver.ID, p1.ID)
	t2 := mustCompletedTrip(t, env, driver.ID, p2.ID)

	insertRating(t, env, t1.ID, p1.ID, driver.ID, domain.PassengerToDriver, 4, nil)
	insertRating(t, env, t2.ID, p2.ID, driver.ID, domain.PassengerToDriver, 5, nil)
	// Ratings the driver handed out must not count toward what they received.
	insertRating(t, env, t1.ID, driver.ID, p1.ID, domain.DriverToPassenger, 3, nil)

	stars, err := env.repository.Ratings.StarsForUser(env.ctx, driver.ID, domain.PassengerToDriver)
	if err != nil {
		t.Fatalf("StarsForUser: %v", err)
	}
	if len(stars) != 2 {
		t.Fatalf("got %d star rows, want 2 (%v)", len(stars), stars)
	}
	sum := 0
	for _, s := range stars {
		sum += s
	}
	if sum != 9 {
		t.Fatalf("star sum = %d, want 9", sum)
	}
}

func TestRatingsRepository_ListForTrip(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	driver := mustCreateDriver(t, env, "Dana")
	passenger := mustCreateUser(t, env, "Pat")
	trip := mustCompletedTrip(t, env, driver.ID, passenger.ID)

	insertRating(t, env, trip.ID, passenger.ID, driver.ID, domain.PassengerToDriver, 4, nil)
	time.Sleep(5 * time.Millisecond)
	insertRating(t, env, trip.ID, driver.ID, passenger.ID, domain.DriverToPassenger, 5, nil)

	items, err := env.repository.Ratings.ListForTrip(env.ctx, trip.ID)
	if err != nil {
		t.Fatalf("ListForTrip: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d ratings, want 2", len(items))
	}
	// Newest first.
	if items[0].Direction != domain.DriverToPassenger {
		t.Fatalf("first item direction = %s, want DRIVER_TO_PASSENGER", items[0].Direction)
	}
	if items[0].Rater.ID != driver.ID || items[0].Rater.DisplayName != "Dana" {
		t.Fatalf("first item rater = %+v", items[0].Rater)
	}
	if items[1].Rater.ID != passenger.ID {
		t.Fatalf("second item rater = %+v", items[1].Rater)
	}

	empty, err := env.repository.Ratings.ListForTrip(env.ctx, uuid.NewString())
	if err != nil {
		t.Fatalf("ListForTrip on unknown trip: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty list, got %d items", len(empty))
	}
}

func TestRatingsRepository_ListForUserPagination(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	driver := mustCreateDriver(t, env, "Dana")

	starsByTrip := []int{5, 4, 3, 2, 1}
	for i, stars := range starsByTrip {
		passenger := mustCreateUser(t, env, "Pat")
		trip := mustCompletedTrip(t, env, driver.ID, passenger.ID)
		insertRating(t, env, trip.ID, passenger.ID, driver.ID, domain.PassengerToDriver, stars, nil)
		if i < len(starsByTrip)-1 {
			time.Sleep(5 * time.Millisecond)
		}
	}

	direction := domain.PassengerToDriver
	first, err := env.repository.Ratings.ListForUser(env.ctx, driver.ID, UserRatingsFilters{
		Direction: &direction,
		Limit:     2,
		Offset:    0,
	})
	if err != nil {
		t.Fatalf("ListForUser page 1: %v", err)
	}
	if len(first) != 2 || first[0].Stars != 1 || first[1].Stars != 2 {
		t.Fatalf("page 1 = %+v, want stars [1 2]", first)
	}

	second, err := env.repository.Ratings.ListForUser(env.ctx, driver.ID, UserRatingsFilters{
		Direction: &direction,
		Limit:     2,
		Offset:    2,
	})
	if err != nil {
		t.Fatalf("ListForUser page 2: %v", err)
	}
	if len(second) != 2 || second[0].Stars != 3 || second[1].Stars != 4 {
		t.Fatalf("page 2 = %+v, want stars [3 4]", second)
	}

	last, err := env.repository.Ratings.ListForUser(env.ctx, driver.ID, UserRatingsFilters{
		Direction: &direction,
		Limit:     2,
		Offset:    4,
	})
	if err != nil {
		t.Fatalf("ListForUser page 3: %v", err)
	}
	if len(last) != 1 || last[0].Stars != 5 {
		t.Fatalf("page 3 = %+v, want stars [5]", last)
	}
}

func TestRatingsRepository_SummarizeForUser(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	driver := mustCreateDriver(t, env, "Dana")

	for _, stars := range []int{5, 5, 4, 2} {
		passenger := mustCreateUser(t, env, "Pat")
		trip := mustCompletedTrip(t, env, driver.ID, passenger.ID)
		insertRating(t, env, trip.ID, passenger.ID, driver.ID, domain.PassengerToDriver, stars, nil)
	}

	direction := domain.PassengerToDriver
	summary, err := env.repository.Ratings.SummarizeForUser(env.ctx, driver.ID, &direction)
	if err != nil {
		t.Fatalf("SummarizeForUser: %v", err)
	}
	if summary.Total != 4 {
		t.Fatalf("total = %d, want 4", summary.Total)
	}
	if summary.Average != 4.0 {
		t.Fatalf("average = %f, want 4.0", summary.Average)
	}
	want := map[int]int64{1: 0, 2: 1, 3: 0, 4: 1, 5: 2}
	for star, count := range want {
		if summary.Histogram[star] != count {
			t.Fatalf("histogram[%d] = %d, want %d", star, summary.Histogram[star], count)
		}
	}

	// No direction filter covers both sides; nothing new for this user.
	all, err := env.repository.Ratings.SummarizeForUser(env.ctx, driver.ID, nil)
	if err != nil {
		t.Fatalf("SummarizeForUser unfiltered: %v", err)
	}
	if all.Total != 4 {
		t.Fatalf("unfiltered total = %d, want 4", all.Total)
	}

	empty, err := env.repository.Ratings.SummarizeForUser(env.ctx, uuid.NewString(), nil)
	if err != nil {
		t.Fatalf("SummarizeForUser empty: %v", err)
	}
	if empty.Total != 0 || empty.Average != 0 {
		t.Fatalf("empty summary = %+v, want zeroes", empty)
	}
}
