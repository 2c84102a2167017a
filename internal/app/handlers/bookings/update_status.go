package bookings

import (
	"context"
	"time"

	"rara/internal/app/access"
	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/outbox"
	"rara/internal/app/uow"
	domainbooking "rara/internal/domain/booking"
)

const updateBookingStatusKey = "bookings.update_status"

// UpdateBookingStatusCommand moves a booking along its lifecycle. Admins
// confirm, complete and cancel; guests may only cancel their own bookings.
type UpdateBookingStatusCommand struct {
	BookingID string `validate:"required"`
	Actor     access.Actor
	Status    string `validate:"required"`
	Reason    string `validate:"max=500"`
}

func (c UpdateBookingStatusCommand) Key() string          { return updateBookingStatusKey }
func (c UpdateBookingStatusCommand) Caller() access.Actor { return c.Actor }

type UpdateBookingStatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *UpdateBookingStatusHandler) Handle(ctx context.Context, cmd UpdateBookingStatusCommand) (dto.Booking, error) {
	next, err := domainbooking.ParseStatus(cmd.Status)
	if err != nil {
		return dto.Booking{}, err
	}
	var result dto.Booking
	err = uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		now := support.Now(h.Clock)
		b, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
		if err != nil {
			return err
		}
		if err := authorizeTransition(cmd.Actor, b, next); err != nil {
			return err
		}
		if !domainbooking.CanTransition(b.Status, next) {
			return domainbooking.ErrInvalidTransition
		}
		if next == domainbooking.StatusConfirmed {
			schedule, calendar, _, err := support.LoadSchedule(ctx, unit, b.PropertyID, now)
			if err != nil {
				return err
			}
			if err := schedule.CheckConfirmation(b.ID, b.Range); err != nil {
				return err
			}
			calendar.Touch(now)
			if err := unit.Calendars().Save(ctx, calendar); err != nil {
				return err
			}
		}
		if err := b.TransitionTo(next, cmd.Reason, now); err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		if err := outbox.RecordFrom(ctx, h.Outbox, h.Encoder, b); err != nil {
			return err
		}
		result = dto.MapBooking(b)
		return nil
	})
	return result, err
}

func authorizeTransition(actor access.Actor, b *domainbooking.Booking, next domainbooking.Status) error {
	if actor.IsAdmin() {
		return nil
	}
	if !b.Involves(actor.ID) {
		return domainbooking.ErrNotFound
	}
	if next == domainbooking.StatusCancelled && b.Guest.ID == actor.ID {
		return nil
	}
	return access.ErrForbidden
}

var _ commands.Handler[UpdateBookingStatusCommand, dto.Booking] = (*UpdateBookingStatusHandler)(nil)
