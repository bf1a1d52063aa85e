package memory

import (
	"context"

	appoutbox "flatfinder/internal/app/outbox"
	"flatfinder/internal/app/uow"
	domainavailability "flatfinder/internal/domain/availability"
	domainbooking "flatfinder/internal/domain/booking"
	domaincomplaints "flatfinder/internal/domain/complaints"
	domainlistings "flatfinder/internal/domain/listings"
)

// Unit stages writes on top of the committed state. Reads through the unit see
// its own staged writes first.
type Unit struct {
	store    *Store
	readOnly bool
	done     bool

	listings   map[domainlistings.ListingID]*domainlistings.Listing
	schedules  map[domainlistings.ListingID]*domainavailability.Schedule
	bookings   map[domainbooking.BookingID]*domainbooking.Booking
	bookingSeq []domainbooking.BookingID
	complaints map[domaincomplaints.ComplaintID]*domaincomplaints.Complaint
	outbox     []appoutbox.EventRecord
}

func (u *Unit) Listings() domainlistings.Repository {
	return listingRepository{u: u}
}

func (u *Unit) Availability() domainavailability.Repository {
	return availabilityRepository{u: u}
}

func (u *Unit) Bookings() domainbooking.Repository {
	return bookingRepository{u: u}
}

func (u *Unit) Complaints() domaincomplaints.Repository {
	return complaintRepository{u: u}
}

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return ErrUnitClosed
	}
	u.done = true
	if u.readOnly {
		return nil
	}
	defer u.release()

	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, l := range u.listings {
		s.listings[id] = l
	}
	for id, sch := range u.schedules {
		s.schedules[id] = sch
	}
	for _, id := range u.bookingSeq {
		s.bookings[id] = u.bookings[id]
	}
	for id, c := range u.complaints {
		s.complaints[id] = c
	}
	now := s.now().UTC()
	for _, rec := range u.outbox {
		s.outbox = append(s.outbox, newOutboxEntry(rec, now))
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	if !u.readOnly {
		u.release()
	}
	return nil
}

func (u *Unit) release() {
	<-u.store.writeSem
}

func (u *Unit) writable() error {
	switch {
	case u.done:
		return ErrUnitClosed
	case u.readOnly:
		return ErrReadOnlyUnit
	}
	return nil
}

func (u *Unit) listing(id domainlistings.ListingID) *domainlistings.Listing {
	if l, ok := u.listings[id]; ok {
		return l
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	return u.store.listings[id]
}

func (u *Unit) schedule(id domainlistings.ListingID) *domainavailability.Schedule {
	if s, ok := u.schedules[id]; ok {
		return s
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	return u.store.schedules[id]
}

func (u *Unit) booking(id domainbooking.BookingID) *domainbooking.Booking {
	if b, ok := u.bookings[id]; ok {
		return b
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	return u.store.bookings[id]
}

func (u *Unit) complaint(id domaincomplaints.ComplaintID) *domaincomplaints.Complaint {
	if c, ok := u.complaints[id]; ok {
		return c
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	return u.store.complaints[id]
}

var _ uow.UnitOfWork = (*Unit)(nil)
