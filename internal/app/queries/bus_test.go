package queries_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatfinder/internal/app/queries"
)

type lookup struct{ ID string }

func (lookup) Key() string { return "listing.get" }

func TestAskTypedResult(t *testing.T) {
	bus := queries.NewInMemoryBus()
	queries.Register[lookup, []string](bus, queries.HandlerFunc[lookup, []string](func(_ context.Context, q lookup) ([]string, error) {
		return []string{q.ID}, nil
	}))

	out, err := queries.Ask[lookup, []string](context.Background(), bus, lookup{ID: "l-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"l-1"}, out)

	_, err = queries.Ask[lookup, []string](context.Background(), nil, lookup{})
	assert.ErrorIs(t, err, queries.ErrNilBus)

	_, err = queries.Ask[lookup, string](context.Background(), bus, lookup{})
	assert.ErrorIs(t, err, queries.ErrResultType)
}
