package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "flatfinder/internal/domain/booking"
	domainlistings "flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/daterange"
)

var ErrDuplicateKey = errors.New("mongo: duplicate key")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(colBookings)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save inserts the booking. Bookings are never updated.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if _, err := r.col.InsertOne(ctx, newBookingDocument(b)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"listing_id": string(listingID)})
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "from", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

type bookingDocument struct {
	ID        string    `bson:"_id"`
	ListingID string    `bson:"listing_id"`
	UserID    string    `bson:"user_id"`
	From      time.Time `bson:"from"`
	To        time.Time `bson:"to"`
	CreatedAt time.Time `bson:"created_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		UserID:    b.UserID,
		From:      b.Range.From.UTC(),
		To:        b.Range.To.UTC(),
		CreatedAt: b.CreatedAt.UTC(),
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		ListingID: domainlistings.ListingID(d.ListingID),
		UserID:    d.UserID,
		Range:     daterange.DateRange{From: d.From.UTC(), To: d.To.UTC()},
		CreatedAt: d.CreatedAt.UTC(),
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
