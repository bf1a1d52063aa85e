package queries

import (
	"context"
	"errors"

	"flatfinder/internal/app/dispatch"
)

// Query is a read request. Queries never open a writable unit of work.
type Query = dispatch.Message

// Handler answers a query.
type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

func (f HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

// Bus is implemented by InMemoryBus and the query middleware.
type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("queries: handler not found")
	ErrInvalidQuery    = errors.New("queries: invalid query for handler")
	ErrResultType      = errors.New("queries: result type mismatch")
	ErrNilBus          = errors.New("queries: nil bus")
)

// Ask runs query through bus and asserts the handler result to R.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	if bus == nil {
		var zero R
		return zero, ErrNilBus
	}
	res, err := bus.Ask(ctx, query)
	return dispatch.Typed[R](res, err, query.Key(), ErrResultType)
}
