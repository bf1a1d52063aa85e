package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flatfinder/internal/app/uow"
	domainavailability "flatfinder/internal/domain/availability"
	domainbooking "flatfinder/internal/domain/booking"
	domaincomplaints "flatfinder/internal/domain/complaints"
	domainlistings "flatfinder/internal/domain/listings"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory opens units backed by a client session. Writable units run in a
// multi-document transaction, which needs a replica set.
type Factory struct {
	DB *mongo.Database
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	unit := &Unit{db: f.DB}
	if opts.ReadOnly {
		return unit, nil
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txn := options.Transaction().
		SetReadConcern(f.DB.ReadConcern()).
		SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txn); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	unit.session = session
	return unit, nil
}

// Unit is a read-only view when session is nil. Repositories join the
// transaction through the session context installed by InjectContext.
type Unit struct {
	db      *mongo.Database
	session mongo.Session
}

func (u *Unit) Listings() domainlistings.Repository         { return NewListingRepository(u.db) }
func (u *Unit) Availability() domainavailability.Repository { return NewAvailabilityRepository(u.db) }
func (u *Unit) Bookings() domainbooking.Repository          { return NewBookingRepository(u.db) }
func (u *Unit) Complaints() domaincomplaints.Repository     { return NewComplaintRepository(u.db) }

func (u *Unit) Commit(ctx context.Context) error {
	return u.finish(ctx, mongo.Session.CommitTransaction)
}

func (u *Unit) Rollback(ctx context.Context) error {
	return u.finish(ctx, mongo.Session.AbortTransaction)
}

// finish ends the transaction once; later calls are no-ops.
func (u *Unit) finish(ctx context.Context, end func(mongo.Session, context.Context) error) error {
	session := u.session
	if session == nil {
		return nil
	}
	u.session = nil
	defer session.EndSession(ctx)
	return end(session, ctx)
}

func (u *Unit) InjectContext(ctx context.Context) context.Context {
	if u.session == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
