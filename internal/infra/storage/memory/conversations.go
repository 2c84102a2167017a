package memory

import (
	"context"
	"sort"
	"sync"

	domainmessaging "rara/internal/domain/messaging"
)

// ConversationRepository keeps threads in process.
type ConversationRepository struct {
	mu    sync.RWMutex
	items map[string]*domainmessaging.Conversation
}

func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{items: make(map[string]*domainmessaging.Conversation)}
}

func (r *ConversationRepository) ByID(ctx context.Context, id string) (*domainmessaging.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.items[id]
	if !ok {
		return nil, domainmessaging.ErrNotFound
	}
	return conv.Clone(), nil
}

func (r *ConversationRepository) ListForUser(ctx context.Context, userID string) ([]*domainmessaging.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainmessaging.Conversation, 0)
	for _, conv := range r.items {
		if conv.Includes(userID) {
			out = append(out, conv.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivity().After(out[j].LastActivity())
	})
	return out, nil
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domainmessaging.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[conv.ID] = conv.Clone()
	return nil
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, conversationID string, message domainmessaging.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.items[conversationID]
	if !ok {
		return domainmessaging.ErrNotFound
	}
	conv.Messages = append(conv.Messages, message)
	if message.SentAt.After(conv.UpdatedAt) {
		conv.UpdatedAt = message.SentAt
	}
	return nil
}

var _ domainmessaging.Repository = (*ConversationRepository)(nil)
