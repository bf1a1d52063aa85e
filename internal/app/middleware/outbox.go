package middleware

import (
	"context"

	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/outbox"
)

// OutboxFlush gives each command its own event buffer and persists it after
// the handler succeeds, inside the surrounding unit of work.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := next.Dispatch
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			ctx = outbox.WithPending(ctx)
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
