package availability

import (
	"time"

	"flatfinder/internal/domain/shared/daterange"
)

type ScheduleUpdated struct {
	ListingID string
	Reason    string
	Entries   int
	At        time.Time
}

func (e ScheduleUpdated) EventName() string     { return "availability.updated" }
func (e ScheduleUpdated) AggregateID() string   { return e.ListingID }
func (e ScheduleUpdated) OccurredAt() time.Time { return e.At }

type RangeReserved struct {
	ListingID string
	Range     daterange.DateRange
	Remaining int
	At        time.Time
}

func (e RangeReserved) EventName() string     { return "availability.reserved" }
func (e RangeReserved) AggregateID() string   { return e.ListingID }
func (e RangeReserved) OccurredAt() time.Time { return e.At }

type ReservationRejected struct {
	ListingID string
	Range     daterange.DateRange
	At        time.Time
}

func (e ReservationRejected) EventName() string     { return "availability.reservation_rejected" }
func (e ReservationRejected) AggregateID() string   { return e.ListingID }
func (e ReservationRejected) OccurredAt() time.Time { return e.At }
