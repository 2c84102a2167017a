package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/messaging"
	"rara/internal/app/queries"
	domainmessaging "rara/internal/domain/messaging"
)

type ChatHTTP interface {
	ListConversations(c *gin.Context)
	StartConversation(c *gin.Context)
	SendMessage(c *gin.Context)
}

// ChatHandler exposes the inbox of the caller.
type ChatHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type startConversationRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h ChatHandler) ListConversations(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	q := messaging.ListConversationsQuery{Actor: actor}
	result, err := queries.Ask[messaging.ListConversationsQuery, dto.ConversationCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ChatHandler) StartConversation(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cmd := messaging.StartConversationCommand{
		ConversationID: uuid.NewString(),
		MessageID:      uuid.NewString(),
		Actor:          actor,
		To:             req.To,
		Subject:        req.Subject,
		Text:           req.Text,
	}
	result, err := commands.Dispatch[messaging.StartConversationCommand, dto.Conversation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ChatHandler) SendMessage(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cmd := messaging.PostMessageCommand{
		ConversationID: c.Param("id"),
		MessageID:      uuid.NewString(),
		Actor:          actor,
		Text:           req.Text,
	}
	result, err := commands.Dispatch[messaging.PostMessageCommand, domainmessaging.Message](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ ChatHTTP = ChatHandler{}
