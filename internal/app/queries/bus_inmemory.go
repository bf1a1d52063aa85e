package queries

import (
	"context"

	"flatfinder/internal/app/dispatch"
)

// InMemoryBus routes queries to handlers registered in process.
type InMemoryBus struct {
	registry *dispatch.Registry[Query]
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{registry: dispatch.NewRegistry[Query]("queries")}
}

func (b *InMemoryBus) Ask(ctx context.Context, query Query) (any, error) {
	return b.registry.Route(ctx, query, ErrHandlerNotFound)
}

func (b *InMemoryBus) Keys() []string { return b.registry.Keys() }

func Register[Q Query, R any](bus *InMemoryBus, handler Handler[Q, R]) {
	var zero Q
	if bus == nil {
		panic("queries: nil bus")
	}
	key := zero.Key()
	bus.registry.Add(key, dispatch.Adapt[Query, Q, R](key, ErrInvalidQuery, handler.Handle))
}
