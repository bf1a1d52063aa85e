package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincomplaints "flatfinder/internal/domain/complaints"
	domainlistings "flatfinder/internal/domain/listings"
)

type ComplaintRepository struct {
	col *mongo.Collection
}

func NewComplaintRepository(db *mongo.Database) *ComplaintRepository {
	return &ComplaintRepository{col: db.Collection(colComplaints)}
}

func (r *ComplaintRepository) ByID(ctx context.Context, id domaincomplaints.ComplaintID) (*domaincomplaints.Complaint, error) {
	var doc complaintDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincomplaints.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ComplaintRepository) Save(ctx context.Context, c *domaincomplaints.Complaint) error {
	doc := newComplaintDocument(c)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *ComplaintRepository) List(ctx context.Context, params domaincomplaints.ListParams) ([]*domaincomplaints.Complaint, error) {
	filter := bson.M{}
	if params.Status != "" {
		filter["status"] = string(params.Status)
	}
	if params.ListingID != "" {
		filter["listing_id"] = string(params.ListingID)
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []complaintDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domaincomplaints.Complaint, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

type complaintDocument struct {
	ID         string    `bson:"_id"`
	ListingID  string    `bson:"listing_id"`
	ReporterID string    `bson:"reporter_id"`
	Subject    string    `bson:"subject"`
	Body       string    `bson:"body"`
	Status     string    `bson:"status"`
	AdminNote  string    `bson:"admin_note"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func newComplaintDocument(c *domaincomplaints.Complaint) complaintDocument {
	return complaintDocument{
		ID:         string(c.ID),
		ListingID:  string(c.ListingID),
		ReporterID: c.ReporterID,
		Subject:    c.Subject,
		Body:       c.Body,
		Status:     string(c.Status),
		AdminNote:  c.AdminNote,
		CreatedAt:  c.CreatedAt.UTC(),
		UpdatedAt:  c.UpdatedAt.UTC(),
	}
}

func (d complaintDocument) toAggregate() *domaincomplaints.Complaint {
	return &domaincomplaints.Complaint{
		ID:         domaincomplaints.ComplaintID(d.ID),
		ListingID:  domainlistings.ListingID(d.ListingID),
		ReporterID: d.ReporterID,
		Subject:    d.Subject,
		Body:       d.Body,
		Status:     domaincomplaints.Status(d.Status),
		AdminNote:  d.AdminNote,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

var _ domaincomplaints.Repository = (*ComplaintRepository)(nil)
