package middleware

import (
	"context"

	"rara/internal/app/commands"
	"rara/internal/app/queries"
)

// Authorizer checks the actor a message carries. access.RoleAuthorizer is the
// production implementation; messages without an actor pass through it.
type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

type AuthorizerFunc func(ctx context.Context, message any) error

func (f AuthorizerFunc) Authorize(ctx context.Context, message any) error { return f(ctx, message) }

// Authorization runs ahead of validation: an anonymous booking request gets
// ErrUnauthenticated even when its body is malformed.
func Authorization(a Authorizer) CommandMiddleware {
	mustAuthorizer(a)
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

// QueryAuthorization guards host reports, block lists and inboxes.
func QueryAuthorization(a Authorizer) QueryMiddleware {
	mustAuthorizer(a)
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}

func mustAuthorizer(a Authorizer) {
	if a == nil {
		panic("middleware: authorizer required")
	}
}
