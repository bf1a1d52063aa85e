package daterange

import (
	"errors"
	"time"
)

var (
	ErrIncomplete   = errors.New("daterange: both endpoints are required")
	ErrInvalidRange = errors.New("daterange: from must not be after to")
)

// DateRange represents a closed interval [From, To].
type DateRange struct {
	From time.Time
	To   time.Time
}

func New(from, to time.Time) (DateRange, error) {
	dr := DateRange{From: from, To: to}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Complete() bool {
	return !dr.From.IsZero() && !dr.To.IsZero()
}

func (dr DateRange) Validate() error {
	if !dr.Complete() {
		return ErrIncomplete
	}
	if dr.From.After(dr.To) {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether other lies entirely inside dr, boundaries included.
func (dr DateRange) Contains(other DateRange) bool {
	return !other.From.Before(dr.From) && !other.To.After(dr.To)
}

// Overlaps uses closed-interval semantics: ranges sharing a single instant overlap.
func (dr DateRange) Overlaps(other DateRange) bool {
	return !other.From.After(dr.To) && !other.To.Before(dr.From)
}

func (dr DateRange) Equal(other DateRange) bool {
	return dr.From.Equal(other.From) && dr.To.Equal(other.To)
}

func (dr DateRange) In(loc *time.Location) DateRange {
	return DateRange{From: dr.From.In(loc), To: dr.To.In(loc)}
}

func (dr DateRange) UTC() DateRange {
	return DateRange{From: dr.From.UTC(), To: dr.To.UTC()}
}

// Nights counts calendar days between From and To in loc.
func (dr DateRange) Nights(loc *time.Location) int {
	start := StartOfDay(dr.From, loc)
	end := StartOfDay(dr.To, loc)
	return int(end.Sub(start).Hours()/24 + 0.5)
}

// SameDay compares the calendar day of a and b as seen in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// AtHour returns the instant hour:00 on t's calendar day in loc.
func AtHour(t time.Time, hour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, hour, 0, 0, 0, loc)
}
