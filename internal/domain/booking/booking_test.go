package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatfinder/internal/domain/shared/daterange"
)

func TestNormalizeRewritesTimeOfDay(t *testing.T) {
	policy := DefaultStayPolicy(time.UTC)

	dr, err := policy.Normalize(
		time.Date(2024, time.June, 3, 7, 31, 12, 0, time.UTC),
		time.Date(2024, time.June, 5, 23, 59, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 3, 15, 0, 0, 0, time.UTC), dr.From)
	assert.Equal(t, time.Date(2024, time.June, 5, 12, 0, 0, 0, time.UTC), dr.To)
}

func TestNormalizeUsesReferenceZone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	policy := DefaultStayPolicy(berlin)

	// 23:00 UTC on the 2nd is already the 3rd in Berlin.
	dr, err := policy.Normalize(
		time.Date(2024, time.June, 2, 23, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 5, 8, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.True(t, dr.From.Equal(time.Date(2024, time.June, 3, 15, 0, 0, 0, berlin)))
	assert.True(t, dr.To.Equal(time.Date(2024, time.June, 5, 12, 0, 0, 0, berlin)))
}

func TestNormalizeErrors(t *testing.T) {
	policy := DefaultStayPolicy(nil)

	_, err := policy.Normalize(time.Time{}, time.Now())
	assert.ErrorIs(t, err, daterange.ErrIncomplete)

	_, err = policy.Normalize(
		time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
	)
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestSameDayStayIsInvalid(t *testing.T) {
	// check-in at 15:00 after check-out at 12:00 on the same day
	_, err := DefaultStayPolicy(time.UTC).Normalize(
		time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
	)
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestValidateNotPast(t *testing.T) {
	policy := DefaultStayPolicy(time.UTC)
	now := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)

	today, err := policy.Normalize(now, now.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.NoError(t, policy.ValidateNotPast(today, now), "check-in later today is allowed")

	yesterday, err := policy.Normalize(now.AddDate(0, 0, -1), now.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.ErrorIs(t, policy.ValidateNotPast(yesterday, now), ErrCheckInInPast)
}

func TestNewBooking(t *testing.T) {
	dr, err := DefaultStayPolicy(time.UTC).Normalize(
		time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	b, err := NewBooking(CreateParams{ID: "b-1", ListingID: "l-1", UserID: " u-1 ", Range: dr, CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, "u-1", b.UserID)
	require.Len(t, b.PendingEvents(), 1)
	assert.Equal(t, "booking.created", b.PendingEvents()[0].EventName())

	_, err = NewBooking(CreateParams{ID: "b-2", ListingID: "l-1", Range: dr})
	assert.ErrorIs(t, err, ErrUserRequired)
	_, err = NewBooking(CreateParams{ListingID: "l-1", UserID: "u-1", Range: dr})
	assert.ErrorIs(t, err, ErrIDRequired)
	_, err = NewBooking(CreateParams{ID: "b-3", ListingID: "l-1", UserID: "u-1"})
	assert.ErrorIs(t, err, daterange.ErrIncomplete)
}
