// Package access carries the authenticated caller through commands and queries.
package access

import (
	"context"
	"errors"

	domainuser "rara/internal/domain/user"
)

var (
	ErrUnauthenticated = errors.New("access: authentication required")
	ErrForbidden       = errors.New("access: not authorized")
)

// Actor is the caller a command or query runs on behalf of.
type Actor struct {
	ID     string
	Name   string
	Avatar string
	Roles  []domainuser.Role
}

func (a Actor) Authenticated() bool { return a.ID != "" }

func (a Actor) HasRole(role domainuser.Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a Actor) IsAdmin() bool { return a.HasRole(domainuser.RoleAdmin) }

// FromUser builds the actor for a stored account.
func FromUser(u *domainuser.User) Actor {
	return Actor{
		ID:     string(u.ID),
		Name:   u.Name(),
		Avatar: u.Avatar,
		Roles:  append([]domainuser.Role(nil), u.Roles...),
	}
}

// Guarded is implemented by messages that need an authenticated caller.
type Guarded interface {
	Caller() Actor
}

// RoleGuarded narrows Guarded to a specific role.
type RoleGuarded interface {
	Guarded
	RequiredRole() domainuser.Role
}

// RoleAuthorizer rejects guarded messages whose caller is anonymous or lacks the required role.
type RoleAuthorizer struct{}

func (RoleAuthorizer) Authorize(_ context.Context, message any) error {
	guarded, ok := message.(Guarded)
	if !ok {
		return nil
	}
	caller := guarded.Caller()
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}
	if rg, ok := message.(RoleGuarded); ok {
		if role := rg.RequiredRole(); role != "" && !caller.HasRole(role) {
			return ErrForbidden
		}
	}
	return nil
}
