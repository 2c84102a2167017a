package reports

import (
	"context"
	"sort"

	"rara/internal/app/access"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/queries"
	"rara/internal/app/uow"
	domainbooking "rara/internal/domain/booking"
)

const earningsKey = "reports.earnings"

// EarningsQuery sums booking totals for one listing. Completed stays are
// broken down by check-in month; confirmed stays count as upcoming.
type EarningsQuery struct {
	Actor      access.Actor
	PropertyID string `validate:"required"`
}

func (q EarningsQuery) Key() string          { return earningsKey }
func (q EarningsQuery) Caller() access.Actor { return q.Actor }

type EarningsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *EarningsHandler) Handle(ctx context.Context, q EarningsQuery) (dto.Earnings, error) {
	var result dto.Earnings
	err := support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		p, err := support.LoadOwnedProperty(ctx, unit, q.PropertyID, q.Actor, true)
		if err != nil {
			return err
		}
		list, err := unit.Bookings().List(ctx, domainbooking.Filter{
			PropertyID: p.ID,
			Statuses:   []domainbooking.Status{domainbooking.StatusConfirmed, domainbooking.StatusCompleted},
		})
		if err != nil {
			return err
		}
		result = summarize(string(p.ID), p.PricePerNight.Currency, list)
		return nil
	})
	return result, err
}

func summarize(propertyID, currency string, list []*domainbooking.Booking) dto.Earnings {
	out := dto.Earnings{PropertyID: propertyID, Currency: currency, Monthly: []dto.MonthlyEarnings{}}
	monthly := map[string]int64{}
	for _, b := range list {
		amount := b.Price.Total.Amount
		switch b.Status {
		case domainbooking.StatusCompleted:
			out.Completed += amount
			monthly[b.Range.CheckIn.Format("2006-01")] += amount
		case domainbooking.StatusConfirmed:
			out.Upcoming += amount
		}
	}
	out.Total = out.Completed + out.Upcoming
	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		out.Monthly = append(out.Monthly, dto.MonthlyEarnings{Month: m, Amount: monthly[m]})
	}
	return out
}

var _ queries.Handler[EarningsQuery, dto.Earnings] = (*EarningsHandler)(nil)
