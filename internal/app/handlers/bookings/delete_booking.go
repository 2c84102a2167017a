package bookings

import (
	"context"
	"time"

	"rara/internal/app/access"
	"rara/internal/app/commands"
	"rara/internal/app/handlers/support"
	"rara/internal/app/outbox"
	"rara/internal/app/uow"
	domainbooking "rara/internal/domain/booking"
)

const deleteBookingKey = "bookings.delete"

type DeleteBookingCommand struct {
	BookingID string `validate:"required"`
	Actor     access.Actor
}

func (c DeleteBookingCommand) Key() string          { return deleteBookingKey }
func (c DeleteBookingCommand) Caller() access.Actor { return c.Actor }

type DeleteBookingResult struct {
	BookingID string `json:"id"`
}

type DeleteBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *DeleteBookingHandler) Handle(ctx context.Context, cmd DeleteBookingCommand) (DeleteBookingResult, error) {
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
		if err != nil {
			return err
		}
		if b.Guest.ID != cmd.Actor.ID {
			if b.Involves(cmd.Actor.ID) || cmd.Actor.IsAdmin() {
				return support.ErrNotOwner
			}
			return domainbooking.ErrNotFound
		}
		if err := b.EnsureDeletable(); err != nil {
			return err
		}
		if err := unit.Bookings().Delete(ctx, b.ID); err != nil {
			return err
		}
		b.MarkDeleted(support.Now(h.Clock))
		return outbox.RecordFrom(ctx, h.Outbox, h.Encoder, b)
	})
	if err != nil {
		return DeleteBookingResult{}, err
	}
	return DeleteBookingResult{BookingID: cmd.BookingID}, nil
}

var _ commands.Handler[DeleteBookingCommand, DeleteBookingResult] = (*DeleteBookingHandler)(nil)
