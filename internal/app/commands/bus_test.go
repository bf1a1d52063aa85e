package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatfinder/internal/app/commands"
)

type rename struct{ To string }

func (rename) Key() string { return "listing.rename" }

func TestDispatchTypedResult(t *testing.T) {
	bus := commands.NewInMemoryBus()
	commands.Register[rename, string](bus, commands.HandlerFunc[rename, string](func(_ context.Context, c rename) (string, error) {
		return "renamed to " + c.To, nil
	}))

	out, err := commands.Dispatch[rename, string](context.Background(), bus, rename{To: "Loft"})
	require.NoError(t, err)
	assert.Equal(t, "renamed to Loft", out)
	assert.Equal(t, []string{"listing.rename"}, bus.Keys())

	_, err = commands.Dispatch[rename, int](context.Background(), bus, rename{})
	assert.ErrorIs(t, err, commands.ErrResultType)
}

func TestDispatchErrors(t *testing.T) {
	_, err := commands.Dispatch[rename, string](context.Background(), nil, rename{})
	assert.ErrorIs(t, err, commands.ErrNilBus)

	_, err = commands.Dispatch[rename, string](context.Background(), commands.NewInMemoryBus(), rename{})
	assert.ErrorIs(t, err, commands.ErrHandlerNotFound)
}
