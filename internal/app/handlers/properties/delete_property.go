package properties

import (
	"context"
	"errors"
	"time"

	"rara/internal/app/access"
	"rara/internal/app/commands"
	"rara/internal/app/handlers/support"
	"rara/internal/app/outbox"
	"rara/internal/app/uow"
	domainbooking "rara/internal/domain/booking"
)

const deletePropertyKey = "properties.delete"

// ErrActiveBookings blocks deleting a listing with upcoming stays.
var ErrActiveBookings = errors.New("properties: listing has pending or confirmed bookings")

type DeletePropertyCommand struct {
	PropertyID string `validate:"required"`
	Actor      access.Actor
}

func (c DeletePropertyCommand) Key() string          { return deletePropertyKey }
func (c DeletePropertyCommand) Caller() access.Actor { return c.Actor }

type DeletePropertyResult struct {
	PropertyID string `json:"id"`
}

type DeletePropertyHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *DeletePropertyHandler) Handle(ctx context.Context, cmd DeletePropertyCommand) (DeletePropertyResult, error) {
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		now := support.Now(h.Clock)
		p, err := support.LoadOwnedProperty(ctx, unit, cmd.PropertyID, cmd.Actor, false)
		if err != nil {
			return err
		}
		active, err := unit.Bookings().List(ctx, domainbooking.Filter{
			PropertyID: p.ID,
			Statuses:   []domainbooking.Status{domainbooking.StatusPending, domainbooking.StatusConfirmed},
		})
		if err != nil {
			return err
		}
		for _, b := range active {
			if !b.StayEnded(now) {
				return ErrActiveBookings
			}
		}
		if err := unit.Properties().Delete(ctx, p.ID); err != nil {
			return err
		}
		if err := unit.Calendars().Delete(ctx, p.ID); err != nil {
			return err
		}
		p.MarkDeleted(now)
		return outbox.RecordFrom(ctx, h.Outbox, h.Encoder, p)
	})
	if err != nil {
		return DeletePropertyResult{}, err
	}
	return DeletePropertyResult{PropertyID: cmd.PropertyID}, nil
}

var _ commands.Handler[DeletePropertyCommand, DeletePropertyResult] = (*DeletePropertyHandler)(nil)
