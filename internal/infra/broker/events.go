// Package broker turns relayed domain events back into application commands.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rara/internal/app/commands"
	"rara/internal/app/handlers/messaging"
	domainbooking "rara/internal/domain/booking"
	"rara/internal/infra/inbox"
)

const bookingStatusChanged = "booking.status_changed.v1"

var ErrMalformedEvent = errors.New("broker: malformed event envelope")

// Envelope is the CloudEvents form written by the outbox relay.
type Envelope struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Source  string          `json:"source"`
	Subject string          `json:"subject"`
	Time    time.Time       `json:"time"`
	Data    json.RawMessage `json:"data"`
}

// EventHandler consumes one serialized envelope.
type EventHandler interface {
	HandleEvent(ctx context.Context, payload []byte) error
}

// BookingNotifier posts a help-center message to the guest for every booking
// status change. Each event id is handled once.
type BookingNotifier struct {
	Commands commands.Bus
	Inbox    inbox.Store
	Logger   *slog.Logger
}

func (n *BookingNotifier) HandleEvent(ctx context.Context, payload []byte) error {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.ID == "" || env.Type == "" {
		return ErrMalformedEvent
	}
	if env.Type != bookingStatusChanged {
		return nil
	}
	var ev domainbooking.StatusChanged
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if n.Inbox != nil {
		seen, err := n.Inbox.Seen(ctx, env.ID)
		if err != nil {
			return err
		}
		if seen {
			n.log().Debug("duplicate event skipped", "event_id", env.ID)
			return nil
		}
	}
	_, err := commands.Dispatch[messaging.NotifyBookingStatusCommand, any](ctx, n.Commands, messaging.NotifyBookingStatusCommand{
		BookingID:     string(ev.BookingID),
		GuestID:       ev.GuestID,
		PropertyTitle: ev.PropertyTitle,
		Status:        string(ev.To),
		Reason:        strings.TrimSpace(ev.Reason),
	})
	if err != nil {
		if n.Inbox != nil {
			_ = n.Inbox.Forget(ctx, env.ID)
		}
		return err
	}
	n.log().Info("booking notice posted", "booking_id", ev.BookingID, "status", ev.To)
	return nil
}

func (n *BookingNotifier) log() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

// LocalProducer hands relayed events straight to a handler when no broker is
// configured.
type LocalProducer struct {
	Handler EventHandler
}

func (p LocalProducer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if p.Handler == nil {
		return nil
	}
	return p.Handler.HandleEvent(ctx, payload)
}
