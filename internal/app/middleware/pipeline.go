package middleware

import (
	"context"

	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/queries"
)

// CommandMiddleware decorates a command bus.
type CommandMiddleware func(next commands.Bus) commands.Bus

// QueryMiddleware decorates a query bus.
type QueryMiddleware func(next queries.Bus) queries.Bus

// ChainCommands wraps base so that mws[0] sees a command first.
func ChainCommands(base commands.Bus, mws ...CommandMiddleware) commands.Bus {
	return chain(base, mws)
}

// ChainQueries wraps base so that mws[0] sees a query first.
func ChainQueries(base queries.Bus, mws ...QueryMiddleware) queries.Bus {
	return chain(base, mws)
}

func chain[B any, M ~func(B) B](base B, mws []M) B {
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

type commandFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f commandFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}

type queryFunc func(ctx context.Context, query queries.Query) (any, error)

func (f queryFunc) Ask(ctx context.Context, q queries.Query) (any, error) {
	return f(ctx, q)
}

// check inspects a message before it reaches the handler.
type check func(ctx context.Context, message any) error

func guardCommands(c check) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := next.Dispatch
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := c(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func guardQueries(c check) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		nextFn := next.Ask
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := c(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
