package bookings

import (
	"context"
	"fmt"
	"time"

	"rara/internal/app/access"
	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/middleware"
	"rara/internal/app/outbox"
	"rara/internal/app/uow"
	domainbooking "rara/internal/domain/booking"
	"rara/internal/domain/pricing"
	domainproperty "rara/internal/domain/property"
	"rara/internal/domain/shared/daterange"
)

const requestBookingKey = "bookings.request"

// ErrOwnListing rejects hosts reserving their own listing.
var ErrOwnListing = fmt.Errorf("%w: hosts cannot book their own listing", access.ErrForbidden)

// RequestBookingCommand asks for a stay. The total is always computed here;
// any client-side amount is ignored.
type RequestBookingCommand struct {
	BookingID       string `validate:"required"`
	Actor           access.Actor
	PropertyID      string `validate:"required"`
	From            string `validate:"required"`
	To              string `validate:"required"`
	IdempotencyKeyV string `validate:"max=200"`
}

func (c RequestBookingCommand) Key() string          { return requestBookingKey }
func (c RequestBookingCommand) Caller() access.Actor { return c.Actor }

func (c RequestBookingCommand) IdempotencyKey() string {
	if c.IdempotencyKeyV == "" {
		return ""
	}
	return c.Actor.ID + ":" + c.IdempotencyKeyV
}

func (c RequestBookingCommand) ResultPrototype() any { return &dto.Booking{} }

type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*dto.Booking, error) {
	stay, err := daterange.Parse(cmd.From, cmd.To)
	if err != nil {
		return nil, err
	}
	if stay.Nights() > pricing.MaxNights {
		return nil, pricing.ErrStayTooLong
	}
	var result *dto.Booking
	err = uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		now := support.Now(h.Clock)
		p, err := unit.Properties().ByID(ctx, domainproperty.ID(cmd.PropertyID))
		if err != nil {
			return err
		}
		if !p.Bookable() {
			return domainproperty.ErrNotBookable
		}
		if p.OwnedBy(cmd.Actor.ID) {
			return ErrOwnListing
		}
		schedule, calendar, _, err := support.LoadSchedule(ctx, unit, p.ID, now)
		if err != nil {
			return err
		}
		if err := schedule.CheckStay(stay); err != nil {
			return err
		}
		quote, err := pricing.Quote(p.PricePerNight, stay)
		if err != nil {
			return err
		}
		b, err := domainbooking.New(domainbooking.CreateParams{
			ID:            domainbooking.ID(cmd.BookingID),
			PropertyID:    p.ID,
			PropertyTitle: p.Title,
			Guest:         domainbooking.Party{ID: cmd.Actor.ID, Name: cmd.Actor.Name},
			Host:          domainbooking.Party{ID: p.Host.ID, Name: p.Host.Name},
			Range:         stay,
			Price:         quote,
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		// concurrent requests for the property conflict on the calendar version
		calendar.Touch(now)
		if err := unit.Calendars().Save(ctx, calendar); err != nil {
			return err
		}
		if err := outbox.RecordFrom(ctx, h.Outbox, h.Encoder, b); err != nil {
			return err
		}
		out := dto.MapBooking(b)
		result = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

var _ commands.Handler[RequestBookingCommand, *dto.Booking] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
