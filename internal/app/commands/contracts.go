package commands

import (
	"context"
	"errors"

	"flatfinder/internal/app/dispatch"
)

// Command is a write intent. Key names the registered handler and is also the
// label used in logs and idempotency records.
type Command = dispatch.Message

// Handler processes a command and returns its result.
type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// HandlerFunc adapts a function, typically a method value, to Handler.
type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

// Bus is implemented by InMemoryBus and by every middleware wrapping it.
type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrInvalidCommand  = errors.New("commands: invalid command for handler")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

// Dispatch sends cmd through bus and asserts the handler result to R.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	if bus == nil {
		var zero R
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
	return dispatch.Typed[R](res, err, cmd.Key(), ErrResultType)
}
