package messaging

import (
	"context"

	"rara/internal/app/access"
	"rara/internal/app/uow"
	domainmessaging "rara/internal/domain/messaging"
	domainuser "rara/internal/domain/user"
)

// userDirectory resolves participants through the user repository of a unit.
type userDirectory struct {
	users domainuser.Repository
}

func (d userDirectory) Lookup(ctx context.Context, userID string) (domainmessaging.Participant, bool) {
	u, err := d.users.ByID(ctx, domainuser.ID(userID))
	if err != nil {
		return domainmessaging.Participant{}, false
	}
	return domainmessaging.Participant{ID: string(u.ID), Name: u.Name(), Avatar: u.Avatar}, true
}

func directoryFor(unit uow.UnitOfWork) domainmessaging.Directory {
	return userDirectory{users: unit.Users()}
}

// senderFor picks the identity an actor posts under in conv. Admins who are
// not a direct participant speak for the help center.
func senderFor(actor access.Actor, conv *domainmessaging.Conversation) (domainmessaging.Sender, error) {
	if conv.Includes(actor.ID) {
		return userSender(actor), nil
	}
	if actor.IsAdmin() && conv.Includes(domainmessaging.AdminID) {
		return domainmessaging.AdminSender(), nil
	}
	return domainmessaging.Sender{}, domainmessaging.ErrNotParticipant
}

func userSender(actor access.Actor) domainmessaging.Sender {
	kind := domainmessaging.SenderGuest
	switch {
	case actor.IsAdmin():
		kind = domainmessaging.SenderAdmin
	case actor.HasRole(domainuser.RoleHost):
		kind = domainmessaging.SenderHost
	}
	return domainmessaging.Sender{ID: actor.ID, Name: actor.Name, Type: kind}
}

// viewerIDs lists the participant ids an actor reads conversations as.
func viewerIDs(actor access.Actor) []string {
	ids := []string{actor.ID}
	if actor.IsAdmin() {
		ids = append(ids, domainmessaging.AdminID)
	}
	return ids
}
