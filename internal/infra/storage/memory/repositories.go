package memory

import (
	"context"
	"sort"

	domainavailability "flatfinder/internal/domain/availability"
	domainbooking "flatfinder/internal/domain/booking"
	domaincomplaints "flatfinder/internal/domain/complaints"
	domainlistings "flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/events"
)

type listingRepository struct{ u *Unit }

func (r listingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	l := r.u.listing(id)
	if l == nil {
		return nil, domainlistings.ErrListingNotFound
	}
	return l.Clone(), nil
}

// Save stores the listing when its version matches the visible one and bumps
// listing.Version.
func (r listingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	var stored int64
	if current := r.u.listing(listing.ID); current != nil {
		stored = current.Version
	}
	if listing.Version != stored {
		return domainlistings.ErrConcurrentUpdate
	}
	listing.Version++
	r.u.listings[listing.ID] = listing.Clone()
	return nil
}

func (r listingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	params = params.Normalized()
	visible := make(map[domainlistings.ListingID]*domainlistings.Listing)
	r.u.store.mu.RLock()
	for id, l := range r.u.store.listings {
		visible[id] = l
	}
	r.u.store.mu.RUnlock()
	for id, l := range r.u.listings {
		visible[id] = l
	}

	matches := make([]*domainlistings.Listing, 0, len(visible))
	for _, l := range visible {
		if err := ctx.Err(); err != nil {
			return domainlistings.SearchResult{}, err
		}
		if params.Matches(l) {
			matches = append(matches, l.Clone())
		}
	}
	return domainlistings.Page(matches, params), nil
}

type availabilityRepository struct{ u *Unit }

func (r availabilityRepository) Schedule(ctx context.Context, id domainlistings.ListingID) (*domainavailability.Schedule, error) {
	if s := r.u.schedule(id); s != nil {
		return s.Clone(), nil
	}
	return domainavailability.NewSchedule(id), nil
}

func (r availabilityRepository) Save(ctx context.Context, s *domainavailability.Schedule) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	var stored int64
	if current := r.u.schedule(s.ListingID); current != nil {
		stored = current.Version
	}
	if s.Version != stored {
		return domainavailability.ErrConcurrentUpdate
	}
	s.Version++
	r.u.schedules[s.ListingID] = s.Clone()
	return nil
}

type bookingRepository struct{ u *Unit }

func (r bookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	b := r.u.booking(id)
	if b == nil {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

// Save inserts a booking. Bookings are append-only so an existing id is rejected.
func (r bookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if r.u.booking(booking.ID) != nil {
		return ErrDuplicateKey
	}
	r.u.bookings[booking.ID] = cloneBooking(booking)
	r.u.bookingSeq = append(r.u.bookingSeq, booking.ID)
	return nil
}

func (r bookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.ListingID == listingID }), nil
}

func (r bookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.UserID == userID }), nil
}

func (r bookingRepository) filter(keep func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	out := make([]*domainbooking.Booking, 0)
	r.u.store.mu.RLock()
	for _, b := range r.u.store.bookings {
		if keep(b) {
			out = append(out, cloneBooking(b))
		}
	}
	r.u.store.mu.RUnlock()
	for _, id := range r.u.bookingSeq {
		if b := r.u.bookings[id]; keep(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	out := *b
	out.EventRecorder = events.EventRecorder{}
	return &out
}

type complaintRepository struct{ u *Unit }

func (r complaintRepository) ByID(ctx context.Context, id domaincomplaints.ComplaintID) (*domaincomplaints.Complaint, error) {
	c := r.u.complaint(id)
	if c == nil {
		return nil, domaincomplaints.ErrNotFound
	}
	return c.Clone(), nil
}

func (r complaintRepository) Save(ctx context.Context, complaint *domaincomplaints.Complaint) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	r.u.complaints[complaint.ID] = complaint.Clone()
	return nil
}

// List returns matching complaints, newest first.
func (r complaintRepository) List(ctx context.Context, params domaincomplaints.ListParams) ([]*domaincomplaints.Complaint, error) {
	visible := make(map[domaincomplaints.ComplaintID]*domaincomplaints.Complaint)
	r.u.store.mu.RLock()
	for id, c := range r.u.store.complaints {
		visible[id] = c
	}
	r.u.store.mu.RUnlock()
	for id, c := range r.u.complaints {
		visible[id] = c
	}

	out := make([]*domaincomplaints.Complaint, 0, len(visible))
	for _, c := range visible {
		if params.Status != "" && c.Status != params.Status {
			continue
		}
		if params.ListingID != "" && c.ListingID != params.ListingID {
			continue
		}
		out = append(out, c.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var (
	_ domainlistings.Repository     = listingRepository{}
	_ domainavailability.Repository = availabilityRepository{}
	_ domainbooking.Repository      = bookingRepository{}
	_ domaincomplaints.Repository   = complaintRepository{}
)
