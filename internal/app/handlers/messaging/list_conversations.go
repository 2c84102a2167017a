package messaging

import (
	"context"
	"sort"

	"rara/internal/app/access"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/queries"
	"rara/internal/app/uow"
	domainmessaging "rara/internal/domain/messaging"
)

const listConversationsKey = "messaging.list_conversations"

type ListConversationsQuery struct {
	Actor access.Actor
}

func (q ListConversationsQuery) Key() string          { return listConversationsKey }
func (q ListConversationsQuery) Caller() access.Actor { return q.Actor }

type ListConversationsHandler struct {
	UoWFactory    uow.UoWFactory
	Conversations domainmessaging.Repository
}

func (h *ListConversationsHandler) Handle(ctx context.Context, q ListConversationsQuery) (dto.ConversationCollection, error) {
	result := dto.ConversationCollection{Items: []dto.Conversation{}}
	seen := map[string]struct{}{}
	err := support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		dir := directoryFor(unit)
		for _, viewer := range viewerIDs(q.Actor) {
			list, err := h.Conversations.ListForUser(ctx, viewer)
			if err != nil {
				return err
			}
			for _, conv := range list {
				if _, dup := seen[conv.ID]; dup {
					continue
				}
				seen[conv.ID] = struct{}{}
				result.Items = append(result.Items, mapConversation(ctx, conv, viewer, dir))
			}
		}
		return nil
	})
	if err != nil {
		return dto.ConversationCollection{}, err
	}
	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].LastActivity.After(result.Items[j].LastActivity)
	})
	return result, nil
}

func mapConversation(ctx context.Context, conv *domainmessaging.Conversation, viewer string, dir domainmessaging.Directory) dto.Conversation {
	messages := conv.Messages
	if messages == nil {
		messages = []domainmessaging.Message{}
	}
	return dto.Conversation{
		ID:           conv.ID,
		Subject:      conv.Subject,
		Participant:  conv.ParticipantFor(ctx, viewer, dir),
		Messages:     messages,
		LastActivity: conv.LastActivity(),
	}
}

var _ queries.Handler[ListConversationsQuery, dto.ConversationCollection] = (*ListConversationsHandler)(nil)
