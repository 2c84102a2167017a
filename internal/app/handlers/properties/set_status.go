package properties

import (
	"context"
	"time"

	"rara/internal/app/access"
	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/outbox"
	"rara/internal/app/uow"
	domainproperty "rara/internal/domain/property"
	domainuser "rara/internal/domain/user"
)

const setPropertyStatusKey = "properties.set_status"

// SetPropertyStatusCommand is the admin moderation decision on a listing.
type SetPropertyStatusCommand struct {
	PropertyID string `validate:"required"`
	Actor      access.Actor
	Status     string `validate:"required,oneof=Published Disabled"`
}

func (c SetPropertyStatusCommand) Key() string                   { return setPropertyStatusKey }
func (c SetPropertyStatusCommand) Caller() access.Actor          { return c.Actor }
func (c SetPropertyStatusCommand) RequiredRole() domainuser.Role { return domainuser.RoleAdmin }

type SetPropertyStatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *SetPropertyStatusHandler) Handle(ctx context.Context, cmd SetPropertyStatusCommand) (dto.Property, error) {
	var result dto.Property
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if !cmd.Actor.IsAdmin() {
			return access.ErrForbidden
		}
		p, err := unit.Properties().ByID(ctx, domainproperty.ID(cmd.PropertyID))
		if err != nil {
			return err
		}
		if err := p.SetStatus(domainproperty.Status(cmd.Status), support.Now(h.Clock)); err != nil {
			return err
		}
		if err := unit.Properties().Save(ctx, p); err != nil {
			return err
		}
		if err := outbox.RecordFrom(ctx, h.Outbox, h.Encoder, p); err != nil {
			return err
		}
		result = dto.MapProperty(p)
		return nil
	})
	return result, err
}

var _ commands.Handler[SetPropertyStatusCommand, dto.Property] = (*SetPropertyStatusHandler)(nil)
