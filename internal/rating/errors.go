package rating

import "errors"

// Submission and query failures callers are expected to branch on. The HTTP
// layer maps each to a distinct status/code pair.
var (
	// ErrInvalidInput covers malformed input: missing ids, stars outside
	// 1..5, oversized comment.
	ErrInvalidInput = errors.New("rating: invalid input")

	// ErrTripNotFound is returned when the referenced trip does not exist.
	ErrTripNotFound = errors.New("rating: trip not found")

	// ErrUserNotFound is returned when the referenced account does not exist.
	ErrUserNotFound = errors.New("rating: user not found")

	// ErrTripNotCompleted rejects ratings for trips that have not finished.
	ErrTripNotCompleted = errors.New("rating: trip not completed")

	// ErrNoRatedParty is returned when the rated party cannot be determined,
	// e.g. a trip without an assigned driver.
	ErrNoRatedParty = errors.New("rating: rated party cannot be determined")

	// ErrNotParticipant rejects actors that are neither the trip's driver
	// nor its passenger.
	ErrNotParticipant = errors.New("rating: actor is not a trip participant")

	// ErrAlreadyRated signals a rating already exists for this trip and
	// direction, whether caught by the pre-check or by the uniqueness
	// constraint at insert time.
	ErrAlreadyRated = errors.New("rating: already rated")
)
