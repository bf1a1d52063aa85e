package uow

import (
	"context"
	"errors"

	domainavailability "flatfinder/internal/domain/availability"
	domainbooking "flatfinder/internal/domain/booking"
	domaincomplaints "flatfinder/internal/domain/complaints"
	domainlistings "flatfinder/internal/domain/listings"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
// Availability and booking writes of one command commit or roll back together.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Availability() domainavailability.Repository
	Bookings() domainbooking.Repository
	Complaints() domaincomplaints.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units that carry driver state (a Mongo
// session, a pgx.Tx) through the context for repositories to pick up.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}

var ErrFactoryMissing = errors.New("uow: no unit bound and no factory to begin one")

type unitKey struct{}

// Bind returns ctx with the unit and any driver state attached.
func Bind(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(ContextInjector); ok {
		ctx = injector.InjectContext(ctx)
	}
	return context.WithValue(ctx, unitKey{}, unit)
}

func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok
}

// Run executes fn in the unit bound to ctx, or else in a new unit that is
// committed when fn succeeds and rolled back on error or panic.
func Run(ctx context.Context, factory UoWFactory, opts TxOptions, fn func(ctx context.Context, unit UnitOfWork) error) (err error) {
	if unit, ok := FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	if factory == nil {
		return ErrFactoryMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return err
	}
	ctx = Bind(ctx, unit)
	done := false
	defer func() {
		if done {
			return
		}
		if rbErr := unit.Rollback(ctx); rbErr != nil && err != nil {
			err = errors.Join(err, rbErr)
		}
	}()
	if err = fn(ctx, unit); err != nil {
		return err
	}
	done = true
	return unit.Commit(ctx)
}
