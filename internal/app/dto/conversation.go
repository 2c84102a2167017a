package dto

import (
	"time"

	domainmessaging "rara/internal/domain/messaging"
)

type Conversation struct {
	ID           string                      `json:"id"`
	Subject      string                      `json:"subject"`
	Participant  domainmessaging.Participant `json:"participant"`
	Messages     []domainmessaging.Message   `json:"messages"`
	LastActivity time.Time                   `json:"lastActivity"`
}

type ConversationCollection struct {
	Items []Conversation `json:"items"`
}
