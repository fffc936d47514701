package rating

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openride/rideapi/internal/domain"
)

func TestValidateSubmission(t *testing.T) {
	longComment := strings.Repeat("x", maxCommentLength+1)
	okComment := strings.Repeat("y", maxCommentLength)

	cases := []struct {
		name    string
		actorID string
		tripID  string
		stars   int
		comment *string
		wantErr bool
	}{
		{name: "valid", actorID: "a", tripID: "t", stars: 3},
		{name: "valid with max comment", actorID: "a", tripID: "t", stars: 5, comment: &okComment},
		{name: "missing actor", tripID: "t", stars: 3, wantErr: true},
		{name: "missing trip", actorID: "a", stars: 3, wantErr: true},
		{name: "stars too low", actorID: "a", tripID: "t", stars: 0, wantErr: true},
		{name: "stars too high", actorID: "a", tripID: "t", stars: 6, wantErr: true},
		{name: "comment too long", actorID: "a", tripID: "t", stars: 3, comment: &longComment, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateSubmission(tc.actorID, tc.tripID, tc.stars, tc.comment)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateSubmission_CommentLengthIsRuneBased(t *testing.T) {
	// 500 multi-byte runes are within the limit even though the byte count
	// is far above it.
	comment := strings.Repeat("ё", maxCommentLength)
	require.NoError(t, validateSubmission("a", "t", 4, &comment))

	over := comment + "ё"
	require.ErrorIs(t, validateSubmission("a", "t", 4, &over), ErrInvalidInput)
}

func TestInferDirection(t *testing.T) {
	driverID := "driver-1"
	trip := domain.Trip{
		ID:          "trip-1",
		PassengerID: "passenger-1",
		DriverID:    &driverID,
	}

	direction, rated, err := inferDirection(driverID, trip)
	require.NoError(t, err)
	assert.Equal(t, domain.DriverToPassenger, direction)
	assert.Equal(t, "passenger-1", rated)

	direction, rated, err = inferDirection("passenger-1", trip)
	require.NoError(t, err)
	assert.Equal(t, domain.PassengerToDriver, direction)
	assert.Equal(t, driverID, rated)

	_, _, err = inferDirection("stranger", trip)
	assert.ErrorIs(t, err, ErrNotParticipant)

	unassigned := domain.Trip{ID: "trip-2", PassengerID: "passenger-1"}
	_, _, err = inferDirection("passenger-1", unassigned)
	assert.ErrorIs(t, err, ErrNoRatedParty)
}

func TestParseCategory(t *testing.T) {
	got, err := ParseCategory("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseCategory("Driver")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.CategoryDriver, *got)

	got, err = ParseCategory(" passenger ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.CategoryPassenger, *got)

	_, err = ParseCategory("taxi")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNormalizeComment(t *testing.T) {
	assert.Nil(t, normalizeComment(nil))

	blank := "   "
	assert.Nil(t, normalizeComment(&blank))

	padded := "  nice trip  "
	got := normalizeComment(&padded)
	require.NotNil(t, got)
	assert.Equal(t, "nice trip", *got)
}

func TestRoundTwoDecimals(t *testing.T) {
	assert.Equal(t, 4.33, roundTwoDecimals(13.0/3.0))
	assert.Equal(t, 3.67, roundTwoDecimals(11.0/3.0))
	assert.Equal(t, 5.0, roundTwoDecimals(5))
	assert.Equal(t, 4.0, roundTwoDecimals(12.0/3.0))
}
