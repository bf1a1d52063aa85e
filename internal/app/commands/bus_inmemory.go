package commands

import (
	"context"

	"flatfinder/internal/app/dispatch"
)

// InMemoryBus routes commands to handlers registered in process.
type InMemoryBus struct {
	registry *dispatch.Registry[Command]
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{registry: dispatch.NewRegistry[Command]("commands")}
}

func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	return b.registry.Route(ctx, cmd, ErrHandlerNotFound)
}

// Keys lists registered command keys in lexical order.
func (b *InMemoryBus) Keys() []string { return b.registry.Keys() }

// Register attaches handler under the key of C's zero value.
func Register[C Command, R any](bus *InMemoryBus, handler Handler[C, R]) {
	var zero C
	RegisterHandler[C, R](bus, zero.Key(), handler)
}

// RegisterHandler attaches handler under an explicit key.
func RegisterHandler[C Command, R any](bus *InMemoryBus, key string, handler Handler[C, R]) {
	if bus == nil {
		panic("commands: nil bus")
	}
	bus.registry.Add(key, dispatch.Adapt[Command, C, R](key, ErrInvalidCommand, handler.Handle))
}
