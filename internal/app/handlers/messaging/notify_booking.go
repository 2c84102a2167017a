package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"rara/internal/app/commands"
	"rara/internal/app/handlers/support"
	domainmessaging "rara/internal/domain/messaging"
)

const notifyBookingStatusKey = "messaging.notify_booking_status"

// BookingUpdatesSubject names the help-center thread that carries booking notices.
const BookingUpdatesSubject = "Booking updates"

// NotifyBookingStatusCommand posts a help-center message to the guest when a
// booking changes status. It is issued by the event consumer.
type NotifyBookingStatusCommand struct {
	BookingID     string `validate:"required"`
	GuestID       string `validate:"required"`
	PropertyTitle string
	Status        string `validate:"required"`
	Reason        string
}

func (c NotifyBookingStatusCommand) Key() string    { return notifyBookingStatusKey }
func (c NotifyBookingStatusCommand) ReadOnly() bool { return true }

type NotifyBookingStatusHandler struct {
	Conversations domainmessaging.Repository
	Clock         func() time.Time
	Logger        *slog.Logger
}

func (h *NotifyBookingStatusHandler) Handle(ctx context.Context, cmd NotifyBookingStatusCommand) (domainmessaging.Message, error) {
	now := support.Now(h.Clock)
	msg := domainmessaging.Message{
		ID:     uuid.NewString(),
		From:   domainmessaging.AdminSender(),
		Text:   bookingNotice(cmd),
		SentAt: now,
	}
	conv, err := h.findThread(ctx, cmd.GuestID)
	if err != nil {
		return domainmessaging.Message{}, err
	}
	if conv == nil {
		conv, err = domainmessaging.Start(domainmessaging.StartParams{
			ID:      uuid.NewString(),
			UserIDs: []string{cmd.GuestID, domainmessaging.AdminID},
			Subject: BookingUpdatesSubject,
			First:   msg,
			Now:     now,
		})
		if err != nil {
			return domainmessaging.Message{}, err
		}
		if err := h.Conversations.Create(ctx, conv); err != nil {
			return domainmessaging.Message{}, err
		}
	} else {
		if msg, err = conv.Append(msg); err != nil {
			return domainmessaging.Message{}, err
		}
		if err := h.Conversations.AppendMessage(ctx, conv.ID, msg); err != nil {
			return domainmessaging.Message{}, err
		}
	}
	if h.Logger != nil {
		h.Logger.Info("booking notice posted", "booking_id", cmd.BookingID, "guest_id", cmd.GuestID, "status", cmd.Status)
	}
	return msg, nil
}

func (h *NotifyBookingStatusHandler) findThread(ctx context.Context, guestID string) (*domainmessaging.Conversation, error) {
	list, err := h.Conversations.ListForUser(ctx, guestID)
	if err != nil {
		return nil, err
	}
	for _, conv := range list {
		if conv.Includes(domainmessaging.AdminID) && conv.Subject == BookingUpdatesSubject {
			return conv, nil
		}
	}
	return nil, nil
}

func bookingNotice(cmd NotifyBookingStatusCommand) string {
	title := strings.TrimSpace(cmd.PropertyTitle)
	if title == "" {
		title = "your stay"
	}
	text := fmt.Sprintf("Your booking %s for %s is now %s.", cmd.BookingID, title, cmd.Status)
	if reason := strings.TrimSpace(cmd.Reason); reason != "" {
		text += " Reason: " + reason
	}
	return text
}

var _ commands.Handler[NotifyBookingStatusCommand, domainmessaging.Message] = (*NotifyBookingStatusHandler)(nil)
