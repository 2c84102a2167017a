package messaging

import (
	"context"
	"strings"
	"time"

	"rara/internal/app/access"
	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/uow"
	domainmessaging "rara/internal/domain/messaging"
	domainuser "rara/internal/domain/user"
)

const startConversationKey = "messaging.start_conversation"

// StartConversationCommand opens a thread with another user or with "admin".
// Admins open threads on behalf of the help center.
type StartConversationCommand struct {
	ConversationID string `validate:"required"`
	MessageID      string `validate:"required"`
	Actor          access.Actor
	To             string `validate:"required"`
	Subject        string `validate:"max=200"`
	Text           string `validate:"required,max=2000"`
}

func (c StartConversationCommand) Key() string          { return startConversationKey }
func (c StartConversationCommand) Caller() access.Actor { return c.Actor }
func (c StartConversationCommand) ReadOnly() bool       { return true }

type StartConversationHandler struct {
	UoWFactory    uow.UoWFactory
	Conversations domainmessaging.Repository
	Clock         func() time.Time
}

func (h *StartConversationHandler) Handle(ctx context.Context, cmd StartConversationCommand) (dto.Conversation, error) {
	var result dto.Conversation
	err := support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		now := support.Now(h.Clock)
		to := strings.TrimSpace(cmd.To)
		if to != domainmessaging.AdminID {
			if _, err := unit.Users().ByID(ctx, domainuser.ID(to)); err != nil {
				return err
			}
		}
		self, sender := cmd.Actor.ID, userSender(cmd.Actor)
		if cmd.Actor.IsAdmin() {
			self, sender = domainmessaging.AdminID, domainmessaging.AdminSender()
		}
		first := domainmessaging.Message{ID: cmd.MessageID, From: sender, Text: cmd.Text, SentAt: now}
		conv, err := domainmessaging.Start(domainmessaging.StartParams{
			ID:      cmd.ConversationID,
			UserIDs: []string{self, to},
			Subject: cmd.Subject,
			First:   first,
			Now:     now,
		})
		if err != nil {
			return err
		}
		if err := h.Conversations.Create(ctx, conv); err != nil {
			return err
		}
		result = mapConversation(ctx, conv, self, directoryFor(unit))
		return nil
	})
	return result, err
}

var _ commands.Handler[StartConversationCommand, dto.Conversation] = (*StartConversationHandler)(nil)
