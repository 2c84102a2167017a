package messaging

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrNotFound       = errors.New("messaging: conversation not found")
	ErrNotParticipant = errors.New("messaging: sender is not a participant")
	ErrEmptyText      = errors.New("messaging: message text is required")
	ErrTextTooLong    = errors.New("messaging: message text must be at most 2000 characters")
	ErrParticipants   = errors.New("messaging: a conversation needs two distinct participants")
)

// AdminID is the pseudo participant standing for the help center.
const AdminID = "admin"

const (
	helpCenterName   = "Help Center"
	helpCenterAvatar = "https://i.pravatar.cc/40?u=admin_support"
	unknownID        = "unknown"
	unknownName      = "Unknown User"
	maxTextLength    = 2000
)

type SenderType string

const (
	SenderGuest SenderType = "guest"
	SenderHost  SenderType = "host"
	SenderAdmin SenderType = "admin"
)

type Sender struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Type SenderType `json:"type"`
}

type Message struct {
	ID     string    `json:"id"`
	From   Sender    `json:"from"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"timestamp"`
}

type Conversation struct {
	ID        string
	UserIDs   []string
	Subject   string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Participant is the other side of a conversation as shown to a viewer.
type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Directory resolves user ids to display details.
type Directory interface {
	Lookup(ctx context.Context, userID string) (Participant, bool)
}

type Repository interface {
	ByID(ctx context.Context, id string) (*Conversation, error)
	// ListForUser returns conversations containing userID, latest activity first.
	ListForUser(ctx context.Context, userID string) ([]*Conversation, error)
	Create(ctx context.Context, conversation *Conversation) error
	AppendMessage(ctx context.Context, conversationID string, message Message) error
}

type StartParams struct {
	ID      string
	UserIDs []string
	Subject string
	First   Message
	Now     time.Time
}

// Start opens a conversation between two participants with its first message.
func Start(params StartParams) (*Conversation, error) {
	if len(params.UserIDs) != 2 {
		return nil, ErrParticipants
	}
	a, b := strings.TrimSpace(params.UserIDs[0]), strings.TrimSpace(params.UserIDs[1])
	if a == "" || b == "" || a == b {
		return nil, ErrParticipants
	}
	now := params.Now.UTC()
	c := &Conversation{
		ID:        params.ID,
		UserIDs:   []string{a, b},
		Subject:   strings.TrimSpace(params.Subject),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := c.Append(params.First); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Conversation) Includes(userID string) bool {
	for _, id := range c.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Other returns the participant id that is not viewerID.
func (c *Conversation) Other(viewerID string) string {
	for _, id := range c.UserIDs {
		if id != viewerID {
			return id
		}
	}
	return ""
}

// Append validates and adds a message in arrival order.
func (c *Conversation) Append(msg Message) (Message, error) {
	msg.Text = strings.TrimSpace(msg.Text)
	if msg.Text == "" {
		return Message{}, ErrEmptyText
	}
	if utf8.RuneCountInString(msg.Text) > maxTextLength {
		return Message{}, ErrTextTooLong
	}
	if !c.Includes(msg.From.ID) {
		return Message{}, ErrNotParticipant
	}
	msg.SentAt = msg.SentAt.UTC()
	c.Messages = append(c.Messages, msg)
	if msg.SentAt.After(c.UpdatedAt) {
		c.UpdatedAt = msg.SentAt
	}
	return msg, nil
}

// LastActivity is the time of the latest message, or creation when empty.
func (c *Conversation) LastActivity() time.Time {
	if n := len(c.Messages); n > 0 {
		return c.Messages[n-1].SentAt
	}
	return c.CreatedAt
}

// ParticipantFor resolves the other side of the conversation for viewerID.
func (c *Conversation) ParticipantFor(ctx context.Context, viewerID string, dir Directory) Participant {
	other := c.Other(viewerID)
	if other == AdminID {
		return HelpCenter()
	}
	if dir != nil && other != "" {
		if p, ok := dir.Lookup(ctx, other); ok {
			return p
		}
	}
	return Participant{ID: unknownID, Name: unknownName}
}

func HelpCenter() Participant {
	return Participant{ID: AdminID, Name: helpCenterName, Avatar: helpCenterAvatar}
}

// AdminSender is the identity admin users post under.
func AdminSender() Sender {
	return Sender{ID: AdminID, Name: helpCenterName, Type: SenderAdmin}
}

func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.UserIDs = append([]string(nil), c.UserIDs...)
	cp.Messages = append([]Message(nil), c.Messages...)
	return &cp
}
