package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cancelBooking struct{ ID string }

func (cancelBooking) Key() string { return "bookings.cancel" }

type holdDates struct{}

func (holdDates) Key() string { return "bookings.hold" }

func TestDispatchReturnsTypedResult(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[cancelBooking, string](bus, cancelBooking{}.Key(),
		HandlerFunc[cancelBooking, string](func(_ context.Context, cmd cancelBooking) (string, error) {
			return "cancelled " + cmd.ID, nil
		}))

	res, err := Dispatch[cancelBooking, string](context.Background(), bus, cancelBooking{ID: "BK1"})

	require.NoError(t, err)
	assert.Equal(t, "cancelled BK1", res)
	assert.Equal(t, []string{"bookings.cancel"}, bus.Keys())
}

func TestDispatchNamesMismatchedResult(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[cancelBooking, int](bus, cancelBooking{}.Key(),
		HandlerFunc[cancelBooking, int](func(context.Context, cancelBooking) (int, error) { return 7, nil }))

	_, err := Dispatch[cancelBooking, string](context.Background(), bus, cancelBooking{})

	require.ErrorIs(t, err, ErrResultType)
	assert.Contains(t, err.Error(), "bookings.cancel returned int")
}

func TestDispatchUnknownAndNilBus(t *testing.T) {
	_, err := Dispatch[holdDates, string](context.Background(), NewInMemoryBus(), holdDates{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	_, err = Dispatch[holdDates, string](context.Background(), nil, holdDates{})
	assert.ErrorIs(t, err, ErrNilBus)
}

func TestRegisterTwicePanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[holdDates, string](func(context.Context, holdDates) (string, error) { return "", nil })
	RegisterHandler[holdDates, string](bus, "bookings.hold", h)

	assert.Panics(t, func() { RegisterHandler[holdDates, string](bus, "bookings.hold", h) })
	assert.Panics(t, func() { RegisterHandler[holdDates, string](bus, "", h) })
}
