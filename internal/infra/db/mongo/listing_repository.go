package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "flatfinder/internal/domain/listings"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(colListings)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrListingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts on (id, version). A stale version either matches nothing or
// collides with the existing _id.
func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainlistings.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainlistings.ErrConcurrentUpdate
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	params = params.Normalized()
	filter := searchFilter(params)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(params.Offset)).
		SetLimit(int64(params.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	var docs []listingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return domainlistings.SearchResult{}, err
	}
	items := make([]*domainlistings.Listing, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toAggregate())
	}
	return domainlistings.SearchResult{Items: items, Total: int(total)}, nil
}

func searchFilter(p domainlistings.SearchParams) bson.M {
	filter := bson.M{}
	if p.Landlord != "" {
		filter["landlord_id"] = string(p.Landlord)
	}
	if len(p.Statuses) > 0 {
		statuses := make([]string, 0, len(p.Statuses))
		for _, s := range p.Statuses {
			statuses = append(statuses, string(s))
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	if p.City != "" {
		filter["city_key"] = p.City
	}
	if p.MaxRentCents > 0 {
		filter["monthly_rent_cents"] = bson.M{"$lte": p.MaxRentCents}
	}
	if p.MinRooms > 0 {
		filter["rooms"] = bson.M{"$gte": p.MinRooms}
	}
	return filter
}

type listingDocument struct {
	ID               string    `bson:"_id"`
	LandlordID       string    `bson:"landlord_id"`
	Title            string    `bson:"title"`
	Description      string    `bson:"description"`
	Address          string    `bson:"address"`
	City             string    `bson:"city"`
	CityKey          string    `bson:"city_key"`
	MonthlyRentCents int64     `bson:"monthly_rent_cents"`
	Rooms            int       `bson:"rooms"`
	Photos           []string  `bson:"photos"`
	Status           string    `bson:"status"`
	ReviewNote       string    `bson:"review_note"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
	Version          int64     `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:               string(l.ID),
		LandlordID:       string(l.Landlord),
		Title:            l.Title,
		Description:      l.Description,
		Address:          l.Address,
		City:             l.City,
		CityKey:          domainlistings.SearchParams{City: l.City}.Normalized().City,
		MonthlyRentCents: l.MonthlyRentCents,
		Rooms:            l.Rooms,
		Photos:           append([]string{}, l.Photos...),
		Status:           string(l.Status),
		ReviewNote:       l.ReviewNote,
		CreatedAt:        l.CreatedAt.UTC(),
		UpdatedAt:        l.UpdatedAt.UTC(),
		Version:          l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	photos := d.Photos
	if photos == nil {
		photos = []string{}
	}
	return &domainlistings.Listing{
		ID:               domainlistings.ListingID(d.ID),
		Landlord:         domainlistings.LandlordID(d.LandlordID),
		Title:            d.Title,
		Description:      d.Description,
		Address:          d.Address,
		City:             d.City,
		MonthlyRentCents: d.MonthlyRentCents,
		Rooms:            d.Rooms,
		Photos:           photos,
		Status:           domainlistings.Status(d.Status),
		ReviewNote:       d.ReviewNote,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
		Version:          d.Version,
	}
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
