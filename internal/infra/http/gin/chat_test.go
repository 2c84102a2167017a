package ginserver

import (
	"context"
	"net/http"
	"strings"
	"testing"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rara/internal/app/dto"
	domainmessaging "rara/internal/domain/messaging"
)

func (a *testAPI) conversationList(token string) []dto.Conversation {
	a.t.Helper()
	rec := a.do(http.MethodGet, "/api/conversations", token, nil)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var list dto.ConversationCollection
	decode(a.t, rec, &list)
	return list.Items
}

func TestHelpCenterConversation(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signup("admin@rara.dev")
	guest := api.register("guest@rara.dev")
	stranger := api.signup("stranger@rara.dev")

	rec := api.do(http.MethodPost, "/api/conversations", guest.Token, gin.H{
		"to":      domainmessaging.AdminID,
		"subject": "Refund question",
		"text":    "Hi, how long do refunds take?",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var conv dto.Conversation
	decode(t, rec, &conv)
	assert.Equal(t, "Refund question", conv.Subject)
	assert.Equal(t, domainmessaging.HelpCenter(), conv.Participant)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, guest.User.ID, conv.Messages[0].From.ID)

	inbox := api.conversationList(admin)
	require.Len(t, inbox, 1)
	assert.Equal(t, conv.ID, inbox[0].ID)
	assert.Equal(t, guest.User.ID, inbox[0].Participant.ID)

	rec = api.do(http.MethodPost, "/api/conversations/"+conv.ID+"/messages", admin, gin.H{"text": "Usually within five days."})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reply domainmessaging.Message
	decode(t, rec, &reply)
	assert.Equal(t, domainmessaging.AdminSender(), reply.From)

	rec = api.do(http.MethodPost, "/api/conversations/"+conv.ID+"/messages", stranger, gin.H{"text": "Let me in"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, api.conversationList(stranger))

	rec = api.do(http.MethodPost, "/api/conversations/"+conv.ID+"/messages", guest.Token, gin.H{"text": strings.Repeat("é", 2001)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.do(http.MethodPost, "/api/conversations/"+conv.ID+"/messages", guest.Token, gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.do(http.MethodPost, "/api/conversations/missing/messages", guest.Token, gin.H{"text": "Hello?"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	thread := api.conversationList(guest.Token)
	require.Len(t, thread, 1)
	require.Len(t, thread[0].Messages, 2)
	assert.Equal(t, "Usually within five days.", thread[0].Messages[1].Text)
	assert.Equal(t, "Help Center", thread[0].Messages[1].From.Name)
}

func TestConversationBetweenUsers(t *testing.T) {
	api := newTestAPI(t)
	host := api.register("host@rara.dev")
	guest := api.register("guest@rara.dev")

	rec := api.do(http.MethodPost, "/api/conversations", guest.Token, gin.H{"to": "nobody", "text": "Hello"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(http.MethodPost, "/api/conversations", guest.Token, gin.H{"to": guest.User.ID, "text": "Talking to myself"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/conversations", guest.Token, gin.H{"to": host.User.ID, "text": "Is early check-in possible?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var conv dto.Conversation
	decode(t, rec, &conv)
	assert.Equal(t, host.User.ID, conv.Participant.ID)
	assert.Equal(t, host.User.Name, conv.Participant.Name)

	rec = api.do(http.MethodPost, "/api/conversations/"+conv.ID+"/messages", host.Token, gin.H{"text": "Yes, from noon."})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	inbox := api.conversationList(host.Token)
	require.Len(t, inbox, 1)
	assert.Equal(t, guest.User.ID, inbox[0].Participant.ID)
	assert.Len(t, inbox[0].Messages, 2)
}

func TestConversationWithUnknownUser(t *testing.T) {
	api := newTestAPI(t)
	guest := api.register("guest@rara.dev")

	conv, err := domainmessaging.Start(domainmessaging.StartParams{
		ID:      "C-ghost",
		UserIDs: []string{"ghost-7", guest.User.ID},
		Subject: "Old thread",
		First: domainmessaging.Message{
			ID:     "M1",
			From:   domainmessaging.Sender{ID: "ghost-7", Name: "Gone", Type: domainmessaging.SenderHost},
			Text:   "This account no longer exists.",
			SentAt: testToday,
		},
		Now: testToday,
	})
	require.NoError(t, err)
	require.NoError(t, api.conversations.Create(context.Background(), conv))

	inbox := api.conversationList(guest.Token)
	require.Len(t, inbox, 1)
	assert.Equal(t, "unknown", inbox[0].Participant.ID)
	assert.Equal(t, "Unknown User", inbox[0].Participant.Name)
}
