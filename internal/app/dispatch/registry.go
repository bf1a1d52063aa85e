// Package dispatch holds the key-addressed handler registry shared by the
// command and query buses.
package dispatch

import (
	"context"
	"fmt"
	"sort"
)

// Message is anything routed by key.
type Message interface {
	Key() string
}

// Func is an untyped handler as stored in a Registry.
type Func[M Message] func(ctx context.Context, msg M) (any, error)

// Registry maps keys to handlers. Registration happens at wiring time and is
// not safe concurrently with Route.
type Registry[M Message] struct {
	kind     string
	handlers map[string]Func[M]
}

// NewRegistry creates an empty registry; kind prefixes panic messages.
func NewRegistry[M Message](kind string) *Registry[M] {
	return &Registry[M]{kind: kind, handlers: map[string]Func[M]{}}
}

// Add registers fn under key. Empty or duplicate keys are wiring bugs and panic.
func (r *Registry[M]) Add(key string, fn Func[M]) {
	if key == "" {
		panic(r.kind + ": empty key registration")
	}
	if _, dup := r.handlers[key]; dup {
		panic(fmt.Sprintf("%s: duplicate registration for %q", r.kind, key))
	}
	r.handlers[key] = fn
}

// Route runs the handler registered for msg.Key(), or wraps notFound.
func (r *Registry[M]) Route(ctx context.Context, msg M, notFound error) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fn, ok := r.handlers[msg.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", notFound, msg.Key())
	}
	return fn(ctx, msg)
}

// Keys lists registered keys in lexical order.
func (r *Registry[M]) Keys() []string {
	keys := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Adapt turns a typed handler into a registry Func. A message of another
// concrete type yields invalid.
func Adapt[M Message, T Message, R any](key string, invalid error, handle func(context.Context, T) (R, error)) Func[M] {
	return func(ctx context.Context, raw M) (any, error) {
		msg, ok := any(raw).(T)
		if !ok {
			return nil, fmt.Errorf("%w: %s got %T", invalid, key, raw)
		}
		return handle(ctx, msg)
	}
}

// Typed asserts an untyped bus result to R. A nil result is R's zero value.
func Typed[R any](res any, err error, key string, mismatch error) (R, error) {
	var zero R
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T, want %T", mismatch, key, res, zero)
	}
	return value, nil
}
