package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quoteStay struct{ Nights int }

func (quoteStay) Key() string { return "availability.quote" }

func TestAskReturnsTypedResult(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[quoteStay, int64](bus, quoteStay{}.Key(),
		HandlerFunc[quoteStay, int64](func(_ context.Context, q quoteStay) (int64, error) {
			return int64(q.Nights) * 200000, nil
		}))

	total, err := Ask[quoteStay, int64](context.Background(), bus, quoteStay{Nights: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(600000), total)

	_, err = Ask[quoteStay, string](context.Background(), bus, quoteStay{Nights: 3})
	require.ErrorIs(t, err, ErrResultType)
	assert.Contains(t, err.Error(), "availability.quote returned int64")
}

func TestAskWithoutHandler(t *testing.T) {
	_, err := Ask[quoteStay, int64](context.Background(), NewInMemoryBus(), quoteStay{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	_, err = Ask[quoteStay, int64](context.Background(), nil, quoteStay{})
	assert.ErrorIs(t, err, ErrNilBus)
}
