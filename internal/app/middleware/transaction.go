package middleware

import (
	"context"

	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/uow"
)

// TxOptionsProvider picks unit options per command.
type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// Transaction runs every command inside one unit of work, joining a unit
// already bound to the context.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			var opts uow.TxOptions
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			var res any
			err := uow.Run(ctx, factory, opts, func(ctx context.Context, _ uow.UnitOfWork) error {
				var err error
				res, err = next.Dispatch(ctx, cmd)
				return err
			})
			if err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
