package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"flatfinder/internal/app/uow"
	domainavailability "flatfinder/internal/domain/availability"
	domainbooking "flatfinder/internal/domain/booking"
	domaincomplaints "flatfinder/internal/domain/complaints"
	domainlistings "flatfinder/internal/domain/listings"
)

var ErrUnitOfWorkNotConfigured = errors.New("postgres: unit of work factory missing pool")

// Factory opens one pgx transaction per unit of work.
type Factory struct {
	Pool Pool
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Pool == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	txOpts := pgx.TxOptions{}
	if opts.ReadOnly {
		txOpts.AccessMode = pgx.ReadOnly
	}
	tx, err := f.Pool.BeginTx(ctx, txOpts)
	if err != nil {
		return nil, err
	}
	return &Unit{tx: tx}, nil
}

type Unit struct {
	tx pgx.Tx
}

func (u *Unit) Listings() domainlistings.Repository {
	return NewListingRepository(u.tx)
}

func (u *Unit) Availability() domainavailability.Repository {
	return NewAvailabilityRepository(u.tx)
}

func (u *Unit) Bookings() domainbooking.Repository {
	return NewBookingRepository(u.tx)
}

func (u *Unit) Complaints() domaincomplaints.Repository {
	return NewComplaintRepository(u.tx)
}

func (u *Unit) Commit(ctx context.Context) error {
	return u.tx.Commit(ctx)
}

// Rollback is safe after Commit.
func (u *Unit) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// InjectContext exposes the transaction to stores outside the unit, such as the outbox.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return withTx(ctx, u.tx)
}

var _ uow.UoWFactory = Factory{}
var _ uow.ContextInjector = (*Unit)(nil)
