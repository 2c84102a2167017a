package scylla

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/gocql/gocql"

	domainmessaging "rara/internal/domain/messaging"
)

var ErrSessionMissing = errors.New("scylla: session not initialized")

const conversationColumns = `id, subject, participants, created_at, updated_at`

// ConversationRepository stores threads in a conversations table and their
// messages in a messages table clustered by send time.
type ConversationRepository struct {
	session *gocql.Session
}

func NewConversationRepository(session *gocql.Session) *ConversationRepository {
	return &ConversationRepository{session: session}
}

func (r *ConversationRepository) ByID(ctx context.Context, id string) (*domainmessaging.Conversation, error) {
	if r.session == nil {
		return nil, ErrSessionMissing
	}
	var conv domainmessaging.Conversation
	err := r.session.
		Query(`SELECT `+conversationColumns+` FROM conversations WHERE id = ? LIMIT 1`, id).
		WithContext(ctx).
		Consistency(gocql.One).
		Scan(&conv.ID, &conv.Subject, &conv.UserIDs, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, domainmessaging.ErrNotFound
		}
		return nil, err
	}
	messages, err := r.messages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	conv.Messages = messages
	sort.Strings(conv.UserIDs)
	return &conv, nil
}

func (r *ConversationRepository) ListForUser(ctx context.Context, userID string) ([]*domainmessaging.Conversation, error) {
	if r.session == nil {
		return nil, ErrSessionMissing
	}
	iter := r.session.
		Query(`SELECT `+conversationColumns+` FROM conversations WHERE participants CONTAINS ? ALLOW FILTERING`, userID).
		WithContext(ctx).
		Consistency(gocql.One).
		Iter()

	var (
		id           string
		subject      string
		participants []string
		createdAt    time.Time
		updatedAt    time.Time
	)
	out := make([]*domainmessaging.Conversation, 0)
	for iter.Scan(&id, &subject, &participants, &createdAt, &updatedAt) {
		out = append(out, &domainmessaging.Conversation{
			ID:        id,
			Subject:   subject,
			UserIDs:   append([]string(nil), participants...),
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	for _, conv := range out {
		messages, err := r.messages(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		conv.Messages = messages
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivity().After(out[j].LastActivity())
	})
	return out, nil
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domainmessaging.Conversation) error {
	if r.session == nil {
		return ErrSessionMissing
	}
	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.SetConsistency(gocql.Quorum)
	batch.Query(`INSERT INTO conversations (`+conversationColumns+`) VALUES (?, ?, ?, ?, ?)`,
		conv.ID, conv.Subject, conv.UserIDs, conv.CreatedAt.UTC(), conv.UpdatedAt.UTC())
	for _, m := range conv.Messages {
		batch.Query(insertMessage, conv.ID, m.SentAt.UTC(), m.ID, m.From.ID, m.From.Name, string(m.From.Type), m.Text)
	}
	return r.session.ExecuteBatch(batch)
}

const insertMessage = `INSERT INTO messages (conversation_id, sent_at, message_id, sender_id, sender_name, sender_type, text) VALUES (?, ?, ?, ?, ?, ?, ?)`

func (r *ConversationRepository) AppendMessage(ctx context.Context, conversationID string, m domainmessaging.Message) error {
	if r.session == nil {
		return ErrSessionMissing
	}
	applied, err := r.session.
		Query(`UPDATE conversations SET updated_at = ? WHERE id = ? IF EXISTS`, m.SentAt.UTC(), conversationID).
		WithContext(ctx).
		MapScanCAS(map[string]any{})
	if err != nil {
		return err
	}
	if !applied {
		return domainmessaging.ErrNotFound
	}
	return r.session.
		Query(insertMessage, conversationID, m.SentAt.UTC(), m.ID, m.From.ID, m.From.Name, string(m.From.Type), m.Text).
		WithContext(ctx).
		Consistency(gocql.Quorum).
		Exec()
}

func (r *ConversationRepository) messages(ctx context.Context, conversationID string) ([]domainmessaging.Message, error) {
	iter := r.session.
		Query(`SELECT message_id, sender_id, sender_name, sender_type, text, sent_at FROM messages WHERE conversation_id = ?`, conversationID).
		WithContext(ctx).
		Consistency(gocql.One).
		Iter()
	var (
		m          domainmessaging.Message
		senderType string
	)
	out := make([]domainmessaging.Message, 0)
	for iter.Scan(&m.ID, &m.From.ID, &m.From.Name, &senderType, &m.Text, &m.SentAt) {
		m.From.Type = domainmessaging.SenderType(senderType)
		m.SentAt = m.SentAt.UTC()
		out = append(out, m)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ domainmessaging.Repository = (*ConversationRepository)(nil)
