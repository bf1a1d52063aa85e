package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "flatfinder/internal/domain/availability"
	domainlistings "flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/daterange"
)

type AvailabilityRepository struct {
	col *mongo.Collection
}

func NewAvailabilityRepository(db *mongo.Database) *AvailabilityRepository {
	return &AvailabilityRepository{col: db.Collection(colAvailability)}
}

func (r *AvailabilityRepository) Schedule(ctx context.Context, id domainlistings.ListingID) (*domainavailability.Schedule, error) {
	var doc scheduleDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainavailability.NewSchedule(id), nil
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *AvailabilityRepository) Save(ctx context.Context, s *domainavailability.Schedule) error {
	doc := newScheduleDocument(s)
	filter := bson.M{"_id": doc.ID, "version": s.Version}
	doc.Version = s.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainavailability.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainavailability.ErrConcurrentUpdate
	}
	s.Version = doc.Version
	return nil
}

type scheduleDocument struct {
	ID        string          `bson:"_id"`
	Entries   []entryDocument `bson:"entries"`
	UpdatedAt time.Time       `bson:"updated_at"`
	Version   int64           `bson:"version"`
}

// entryDocument endpoints are nullable in stored data. Entries missing either
// endpoint are dropped on load.
type entryDocument struct {
	AvailableFrom *time.Time `bson:"available_from"`
	AvailableTo   *time.Time `bson:"available_to"`
}

func newScheduleDocument(s *domainavailability.Schedule) scheduleDocument {
	entries := make([]entryDocument, 0, len(s.Entries))
	for _, e := range s.Entries {
		from, to := e.From.UTC(), e.To.UTC()
		entries = append(entries, entryDocument{AvailableFrom: &from, AvailableTo: &to})
	}
	return scheduleDocument{
		ID:        string(s.ListingID),
		Entries:   entries,
		UpdatedAt: s.UpdatedAt.UTC(),
		Version:   s.Version,
	}
}

func (d scheduleDocument) toAggregate() *domainavailability.Schedule {
	s := domainavailability.NewSchedule(domainlistings.ListingID(d.ID))
	for _, e := range d.Entries {
		if e.AvailableFrom == nil || e.AvailableTo == nil {
			continue
		}
		s.Entries = append(s.Entries, daterange.DateRange{From: e.AvailableFrom.UTC(), To: e.AvailableTo.UTC()})
	}
	s.UpdatedAt = d.UpdatedAt.UTC()
	s.Version = d.Version
	return s
}

var _ domainavailability.Repository = (*AvailabilityRepository)(nil)
