package availability

import (
	"context"
	"time"

	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/queries"
	"rara/internal/app/uow"
	"rara/internal/domain/pricing"
	domainproperty "rara/internal/domain/property"
	"rara/internal/domain/shared/daterange"
)

const quoteKey = "availability.quote"

// QuoteQuery prices a stay for the booking widget and reports whether it can be booked.
type QuoteQuery struct {
	PropertyID string `validate:"required"`
	From       string `validate:"required"`
	To         string `validate:"required"`
}

func (q QuoteQuery) Key() string { return quoteKey }

type QuoteHandler struct {
	UoWFactory uow.UoWFactory
	Clock      func() time.Time
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (dto.Quote, error) {
	stay, err := daterange.Parse(q.From, q.To)
	if err != nil {
		return dto.Quote{}, err
	}
	if stay.Nights() > pricing.MaxNights {
		return dto.Quote{}, pricing.ErrStayTooLong
	}
	var result dto.Quote
	err = support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		p, err := unit.Properties().ByID(ctx, domainproperty.ID(q.PropertyID))
		if err != nil {
			return err
		}
		schedule, _, _, err := support.LoadSchedule(ctx, unit, p.ID, support.Now(h.Clock))
		if err != nil {
			return err
		}
		breakdown, err := pricing.Quote(p.PricePerNight, stay)
		if err != nil {
			return err
		}
		available := p.Bookable() && schedule.CheckStay(stay) == nil
		result = dto.MapQuote(string(p.ID), stay, breakdown, available)
		return nil
	})
	return result, err
}

var _ queries.Handler[QuoteQuery, dto.Quote] = (*QuoteHandler)(nil)
