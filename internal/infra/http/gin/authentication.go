package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rara/internal/app/access"
	"rara/internal/app/services/auth"
	domainuser "rara/internal/domain/user"
)

const (
	actorContextKey = "rara.actor"
	userContextKey  = "rara.user"
)

// Authenticator resolves users from bearer tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domainuser.User, error)
}

// AuthMiddleware attaches the caller to the request when the bearer token is
// valid. Anonymous requests pass through; handlers decide whether they need an actor.
type AuthMiddleware struct {
	Service Authenticator
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	user, err := m.Service.Authenticate(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, domainuser.ErrNotFound) && m.Logger != nil {
			m.Logger.Warn("token resolution failed", "error", err)
		}
		c.Next()
		return
	}
	c.Set(userContextKey, user)
	c.Set(actorContextKey, access.FromUser(user))
	c.Next()
}

// currentActor returns the caller, or the zero actor for anonymous requests.
func currentActor(c *gin.Context) access.Actor {
	val, ok := c.Get(actorContextKey)
	if !ok {
		return access.Actor{}
	}
	actor, _ := val.(access.Actor)
	return actor
}

func currentUser(c *gin.Context) (*domainuser.User, bool) {
	val, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*domainuser.User)
	return user, ok && user != nil
}

// requireActor writes 401 and returns false for anonymous callers.
func requireActor(c *gin.Context, logger *slog.Logger) (access.Actor, bool) {
	actor := currentActor(c)
	if !actor.Authenticated() {
		respondError(c, logger, access.ErrUnauthenticated)
		return access.Actor{}, false
	}
	return actor, true
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
