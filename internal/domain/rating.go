package domain

import "time"

// RatingDirection records which participant rated which.
type RatingDirection string

const (
	DriverToPassenger RatingDirection = "DRIVER_TO_PASSENGER"
	PassengerToDriver RatingDirection = "PASSENGER_TO_DRIVER"
)

// Category returns the aggregate category the direction feeds: ratings
// flowing passenger-to-driver build the driver aggregate and vice versa.
func (d RatingDirection) Category() RatingCategory {
	if d == PassengerToDriver {
		return CategoryDriver
	}
	return CategoryPassenger
}

// RatingCategory distinguishes ratings received as a driver from ratings
// received as a passenger.
type RatingCategory string

const (
	CategoryDriver    RatingCategory = "driver"
	CategoryPassenger RatingCategory = "passenger"
)

// Direction returns the rating direction whose rows feed this category.
func (c RatingCategory) Direction() RatingDirection {
	if c == CategoryDriver {
		return PassengerToDriver
	}
	return DriverToPassenger
}

// Rating is one star-rating given by one trip participant to the other.
// Rows are immutable once written; at most one exists per (trip, direction).
type Rating struct {
	ID        string
	TripID    string
	RatedBy   string
	RatedUser string
	Direction RatingDirection
	Stars     int
	Comment   *string
	CreatedAt time.Time
}

// TripRating is a rating joined with the submitting actor's public identity.
type TripRating struct {
	Rating
	Rater PublicIdentity
}
