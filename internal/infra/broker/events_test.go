package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rara/internal/app/commands"
	"rara/internal/app/handlers/messaging"
	domainbooking "rara/internal/domain/booking"
	"rara/internal/infra/storage/memory"
)

type recordingBus struct {
	sent []messaging.NotifyBookingStatusCommand
	err  error
}

func (b *recordingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.sent = append(b.sent, cmd.(messaging.NotifyBookingStatusCommand))
	return nil, nil
}

func envelope(t *testing.T, id, typ string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(Envelope{ID: id, Type: typ, Source: "rara/api", Data: raw})
	require.NoError(t, err)
	return payload
}

func statusChanged() domainbooking.StatusChanged {
	return domainbooking.StatusChanged{
		BookingID:     "B1",
		PropertyTitle: "Villa Sawah",
		GuestID:       "U1",
		From:          domainbooking.StatusPending,
		To:            domainbooking.StatusCancelled,
		Reason:        " host unavailable ",
	}
}

func TestNotifierPostsStatusNotice(t *testing.T) {
	bus := &recordingBus{}
	n := &BookingNotifier{Commands: bus, Inbox: memory.NewInbox()}

	err := n.HandleEvent(context.Background(), envelope(t, "E1", bookingStatusChanged, statusChanged()))

	require.NoError(t, err)
	require.Len(t, bus.sent, 1)
	assert.Equal(t, messaging.NotifyBookingStatusCommand{
		BookingID:     "B1",
		GuestID:       "U1",
		PropertyTitle: "Villa Sawah",
		Status:        string(domainbooking.StatusCancelled),
		Reason:        "host unavailable",
	}, bus.sent[0])
}

func TestNotifierHandlesEachEventOnce(t *testing.T) {
	bus := &recordingBus{}
	n := &BookingNotifier{Commands: bus, Inbox: memory.NewInbox()}
	payload := envelope(t, "E1", bookingStatusChanged, statusChanged())

	require.NoError(t, n.HandleEvent(context.Background(), payload))
	require.NoError(t, n.HandleEvent(context.Background(), payload))

	assert.Len(t, bus.sent, 1)
}

func TestNotifierForgetsFailedEvents(t *testing.T) {
	bus := &recordingBus{err: errors.New("conversation store down")}
	n := &BookingNotifier{Commands: bus, Inbox: memory.NewInbox()}
	payload := envelope(t, "E1", bookingStatusChanged, statusChanged())

	require.Error(t, n.HandleEvent(context.Background(), payload))

	bus.err = nil
	require.NoError(t, n.HandleEvent(context.Background(), payload))
	assert.Len(t, bus.sent, 1)
}

func TestNotifierIgnoresOtherEventTypes(t *testing.T) {
	bus := &recordingBus{}
	n := &BookingNotifier{Commands: bus}

	err := n.HandleEvent(context.Background(), envelope(t, "E1", "review.submitted.v1", map[string]string{"reviewId": "R1"}))

	require.NoError(t, err)
	assert.Empty(t, bus.sent)
}

func TestNotifierRejectsMalformedEnvelopes(t *testing.T) {
	n := &BookingNotifier{Commands: &recordingBus{}}

	for name, payload := range map[string][]byte{
		"not json":   []byte("{"),
		"missing id": envelope(t, "", bookingStatusChanged, statusChanged()),
		"bad data":   envelope(t, "E1", bookingStatusChanged, "nope"),
	} {
		assert.ErrorIs(t, n.HandleEvent(context.Background(), payload), ErrMalformedEvent, name)
	}
}

func TestLocalProducerDeliversToHandler(t *testing.T) {
	bus := &recordingBus{}
	p := LocalProducer{Handler: &BookingNotifier{Commands: bus}}

	err := p.Publish(context.Background(), "booking.events.v1", "B1", envelope(t, "E1", bookingStatusChanged, statusChanged()), nil)

	require.NoError(t, err)
	assert.Len(t, bus.sent, 1)
	assert.NoError(t, LocalProducer{}.Publish(context.Background(), "t", "k", nil, nil))
}
