package listings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)

func newListing(t *testing.T) *Listing {
	t.Helper()
	l, err := NewListing(CreateParams{
		ID:       "l-1",
		Landlord: "u-landlord",
		Details: Details{
			Title:            "  Bright flat  ",
			Address:          "Main st 1",
			City:             "Berlin",
			MonthlyRentCents: 95000,
			Rooms:            2,
		},
		Now: now,
	})
	require.NoError(t, err)
	return l
}

func TestNewListingStartsInReview(t *testing.T) {
	l := newListing(t)

	assert.Equal(t, StatusPendingReview, l.Status)
	assert.Equal(t, "Bright flat", l.Title)
	assert.False(t, l.Bookable())
	assert.True(t, l.OwnedBy("u-landlord"))
	assert.False(t, l.OwnedBy(""))
	require.Len(t, l.PendingEvents(), 1)
	assert.Equal(t, "listing.created", l.PendingEvents()[0].EventName())
}

func TestNewListingValidatesDetails(t *testing.T) {
	cases := map[string]struct {
		details Details
		want    error
	}{
		"title":   {Details{Address: "a", City: "c", Rooms: 1}, ErrTitleRequired},
		"address": {Details{Title: "t", City: "c", Rooms: 1}, ErrAddressRequired},
		"rent":    {Details{Title: "t", Address: "a", City: "c", Rooms: 1, MonthlyRentCents: -1}, ErrRentNegative},
		"rooms":   {Details{Title: "t", Address: "a", City: "c"}, ErrRoomsInvalid},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewListing(CreateParams{ID: "l", Landlord: "u", Details: tc.details, Now: now})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReviewTransitions(t *testing.T) {
	l := newListing(t)

	require.NoError(t, l.Review(StatusApproved, "ok", now))
	assert.True(t, l.Bookable())
	assert.Equal(t, "ok", l.ReviewNote)

	assert.ErrorIs(t, l.Review(StatusPendingReview, "", now), ErrInvalidTransition)

	require.NoError(t, l.Review(StatusArchived, "", now))
	assert.Empty(t, AllowedTransitions(StatusArchived))
	assert.ErrorIs(t, l.Review(StatusApproved, "", now), ErrInvalidTransition)
}

func TestUpdateDetailsSendsApprovedListingBackToReview(t *testing.T) {
	l := newListing(t)
	require.NoError(t, l.Review(StatusApproved, "", now))
	l.ClearEvents()

	d := Details{Title: "New", Address: "Main st 1", City: "Berlin", Rooms: 3}
	require.NoError(t, l.UpdateDetails(d, now.Add(time.Hour)))

	assert.Equal(t, StatusPendingReview, l.Status)
	assert.Equal(t, 3, l.Rooms)
	names := []string{}
	for _, ev := range l.PendingEvents() {
		names = append(names, ev.EventName())
	}
	assert.Equal(t, []string{"listing.updated", "listing.status_changed"}, names)
}

func TestUpdateDetailsRefusesArchived(t *testing.T) {
	l := newListing(t)
	require.NoError(t, l.Review(StatusApproved, "", now))
	require.NoError(t, l.Review(StatusArchived, "", now))

	err := l.UpdateDetails(Details{Title: "x", Address: "a", City: "c", Rooms: 1}, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAddPhoto(t *testing.T) {
	l := newListing(t)

	assert.ErrorIs(t, l.AddPhoto("  ", now), ErrPhotoURLRequired)
	require.NoError(t, l.AddPhoto("https://cdn/p.jpg", now))
	assert.Equal(t, []string{"https://cdn/p.jpg"}, l.Photos)

	c := l.Clone()
	c.Photos[0] = "changed"
	assert.Equal(t, "https://cdn/p.jpg", l.Photos[0])
	assert.Empty(t, c.PendingEvents())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" approved ")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)

	_, err = ParseStatus("live")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
