package domain

import "time"

// TripStatus enumerates the trip lifecycle.
type TripStatus string

const (
	TripRequested  TripStatus = "REQUESTED"
	TripInProgress TripStatus = "IN_PROGRESS"
	TripCompleted  TripStatus = "COMPLETED"
	TripCancelled  TripStatus = "CANCELLED"
)

// Trip represents one ride from request to completion. DriverID is nil until
// a driver accepts the trip.
type Trip struct {
	ID             string
	PassengerID    string
	DriverID       *string
	Status         TripStatus
	PickupAddress  string
	DropoffAddress string
	RequestedAt    time.Time
	CompletedAt    *time.Time
}
