package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rara/internal/domain/pricing"
	"rara/internal/domain/shared/daterange"
	"rara/internal/domain/shared/money"
)

func newBooking(t *testing.T) *Booking {
	t.Helper()
	stay, err := daterange.Parse("2030-06-10", "2030-06-15")
	require.NoError(t, err)
	quote, err := pricing.Quote(money.Must(200000, money.DefaultCurrency), stay)
	require.NoError(t, err)
	b, err := New(CreateParams{
		ID:            "BK100",
		PropertyID:    "P001",
		PropertyTitle: "Villa",
		Guest:         Party{ID: "G1", Name: "Guest"},
		Host:          Party{ID: "H1", Name: "Host"},
		Range:         stay,
		Price:         quote,
		CreatedAt:     time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}

func TestNewBookingIsPendingWithComputedTotal(t *testing.T) {
	b := newBooking(t)

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, int64(1100000), b.Price.Total.Amount)
	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.requested", events[0].EventName())
}

func TestLifecycleFollowsStateMachine(t *testing.T) {
	b := newBooking(t)
	now := time.Now()

	require.NoError(t, b.Confirm(now))
	require.NoError(t, b.Complete(now))
	assert.Equal(t, StatusCompleted, b.Status)

	assert.ErrorIs(t, b.Confirm(now), ErrInvalidTransition)
	assert.ErrorIs(t, b.Cancel("late", now), ErrInvalidTransition)
}

func TestPendingCannotComplete(t *testing.T) {
	b := newBooking(t)
	assert.ErrorIs(t, b.Complete(time.Now()), ErrInvalidTransition)
	assert.Equal(t, StatusPending, b.Status)
}

func TestCancelledIsTerminal(t *testing.T) {
	b := newBooking(t)
	require.NoError(t, b.Cancel("changed plans", time.Now()))

	assert.True(t, b.Status.Terminal())
	assert.ErrorIs(t, b.Confirm(time.Now()), ErrInvalidTransition)
	assert.NoError(t, b.EnsureDeletable())
}

func TestConfirmedIsNotDeletable(t *testing.T) {
	b := newBooking(t)
	require.NoError(t, b.Confirm(time.Now()))
	assert.ErrorIs(t, b.EnsureDeletable(), ErrNotDeletable)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	_, err = ParseStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStayEnded(t *testing.T) {
	b := newBooking(t)
	assert.False(t, b.StayEnded(time.Date(2030, 6, 14, 23, 0, 0, 0, time.UTC)))
	assert.True(t, b.StayEnded(time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC)))
}

func TestFilterMatches(t *testing.T) {
	b := newBooking(t)
	assert.True(t, Filter{GuestID: "G1"}.Matches(b))
	assert.False(t, Filter{HostID: "G1"}.Matches(b))
	assert.True(t, Filter{Statuses: []Status{StatusConfirmed, StatusPending}}.Matches(b))
	assert.False(t, Filter{Statuses: []Status{StatusCompleted}}.Matches(b))
}
