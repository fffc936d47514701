package domain

import "time"

// RatingAggregate is the cached summary of ratings an account has received
// in one category. It is recomputed from the ratings table on every write.
type RatingAggregate struct {
	Average float64
	Count   int64
}

// User represents an account that can request trips and submit ratings.
// Every user carries a passenger-side rating aggregate; the driver-side
// aggregate lives on the Driver profile.
type User struct {
	ID          string
	DisplayName string
	AvatarURL   *string
	Passenger   RatingAggregate
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Driver is the optional driver profile attached to a user.
type Driver struct {
	UserID       string
	LicensePlate *string
	VehicleModel *string
	Rating       RatingAggregate
	CreatedAt    time.Time
}

// PublicIdentity is the subset of a user exposed alongside their ratings.
type PublicIdentity struct {
	ID          string
	DisplayName string
	AvatarURL   *string
}
