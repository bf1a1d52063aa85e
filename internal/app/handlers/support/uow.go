package support

import (
	"context"

	"flatfinder/internal/app/uow"
)

func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, func() {}, nil
	}
	if factory == nil {
		return nil, ctx, func() {}, uow.ErrFactoryMissing
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, func() {}, err
	}
	execCtx := uow.Bind(ctx, newUnit)
	cleanup := func() {
		_ = newUnit.Rollback(execCtx)
	}
	return newUnit, execCtx, cleanup, nil
}

// WithinUnit runs fn in a writable unit: the one bound to ctx or a new one
// committed on success.
func WithinUnit(ctx context.Context, factory uow.UoWFactory, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	return uow.Run(ctx, factory, uow.TxOptions{}, fn)
}
