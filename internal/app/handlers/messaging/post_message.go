package messaging

import (
	"context"
	"time"

	"rara/internal/app/access"
	"rara/internal/app/commands"
	"rara/internal/app/handlers/support"
	domainmessaging "rara/internal/domain/messaging"
)

const postMessageKey = "messaging.post_message"

type PostMessageCommand struct {
	ConversationID string `validate:"required"`
	MessageID      string `validate:"required"`
	Actor          access.Actor
	Text           string `validate:"required,max=2000"`
}

func (c PostMessageCommand) Key() string          { return postMessageKey }
func (c PostMessageCommand) Caller() access.Actor { return c.Actor }
func (c PostMessageCommand) ReadOnly() bool       { return true }

type PostMessageHandler struct {
	Conversations domainmessaging.Repository
	Clock         func() time.Time
}

func (h *PostMessageHandler) Handle(ctx context.Context, cmd PostMessageCommand) (domainmessaging.Message, error) {
	conv, err := h.Conversations.ByID(ctx, cmd.ConversationID)
	if err != nil {
		return domainmessaging.Message{}, err
	}
	sender, err := senderFor(cmd.Actor, conv)
	if err != nil {
		return domainmessaging.Message{}, err
	}
	msg, err := conv.Append(domainmessaging.Message{
		ID:     cmd.MessageID,
		From:   sender,
		Text:   cmd.Text,
		SentAt: support.Now(h.Clock),
	})
	if err != nil {
		return domainmessaging.Message{}, err
	}
	if err := h.Conversations.AppendMessage(ctx, conv.ID, msg); err != nil {
		return domainmessaging.Message{}, err
	}
	return msg, nil
}

var _ commands.Handler[PostMessageCommand, domainmessaging.Message] = (*PostMessageHandler)(nil)
