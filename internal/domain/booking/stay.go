package booking

import (
	"errors"
	"time"

	"flatfinder/internal/domain/shared/daterange"
)

const (
	DefaultCheckInHour  = 15
	DefaultCheckOutHour = 12
)

var ErrCheckInInPast = errors.New("booking: check-in date is in the past")

// StayPolicy aligns every stay to the same check-in and check-out instants in
// a fixed reference time zone, whatever the client's local time was.
type StayPolicy struct {
	Location     *time.Location
	CheckInHour  int
	CheckOutHour int
}

func DefaultStayPolicy(loc *time.Location) StayPolicy {
	if loc == nil {
		loc = time.UTC
	}
	return StayPolicy{Location: loc, CheckInHour: DefaultCheckInHour, CheckOutHour: DefaultCheckOutHour}
}

func (p StayPolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Normalize rewrites from to check-in time and to to check-out time on their
// calendar days in the reference zone. Missing endpoints yield
// daterange.ErrIncomplete.
func (p StayPolicy) Normalize(from, to time.Time) (daterange.DateRange, error) {
	if from.IsZero() || to.IsZero() {
		return daterange.DateRange{}, daterange.ErrIncomplete
	}
	loc := p.location()
	return daterange.New(
		daterange.AtHour(from, p.CheckInHour, loc),
		daterange.AtHour(to, p.CheckOutHour, loc),
	)
}

// ValidateNotPast rejects stays whose check-in day precedes today.
func (p StayPolicy) ValidateNotPast(dr daterange.DateRange, now time.Time) error {
	loc := p.location()
	if daterange.StartOfDay(dr.From, loc).Before(daterange.StartOfDay(now, loc)) {
		return ErrCheckInInPast
	}
	return nil
}
