package availability

import (
	"context"
	"time"

	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/queries"
	"rara/internal/app/uow"
	domainproperty "rara/internal/domain/property"
	"rara/internal/domain/shared/daterange"
)

const getAvailabilityKey = "availability.get"

// DefaultWindowDays is the calendar window used when the caller gives no dates.
const DefaultWindowDays = 90

// GetAvailabilityQuery lists blocked days for the guest calendar.
type GetAvailabilityQuery struct {
	PropertyID string `validate:"required"`
	From       string
	To         string
}

func (q GetAvailabilityQuery) Key() string { return getAvailabilityKey }

type GetAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
	Clock      func() time.Time
}

func (h *GetAvailabilityHandler) Handle(ctx context.Context, q GetAvailabilityQuery) (dto.Availability, error) {
	today := daterange.Day(support.Now(h.Clock))
	window, err := Window(q.From, q.To, today, DefaultWindowDays)
	if err != nil {
		return dto.Availability{}, err
	}
	var result dto.Availability
	err = support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Properties().ByID(ctx, domainproperty.ID(q.PropertyID)); err != nil {
			return err
		}
		schedule, _, _, err := support.LoadSchedule(ctx, unit, domainproperty.ID(q.PropertyID), today)
		if err != nil {
			return err
		}
		result = dto.Availability{
			PropertyID:  q.PropertyID,
			From:        window.CheckIn.Format(daterange.DayLayout),
			To:          window.CheckOut.Format(daterange.DayLayout),
			Today:       today.Format(daterange.DayLayout),
			BlockedDays: dto.FormatDays(schedule.BlockedDays(window)),
		}
		return nil
	})
	return result, err
}

// Window parses an optional from/to pair, defaulting to days starting at start.
// Windows longer than daterange.MaxWindowDays are rejected.
func Window(from, to string, start time.Time, days int) (daterange.DateRange, error) {
	window, err := parseWindow(from, to, start, days)
	if err != nil {
		return daterange.DateRange{}, err
	}
	if err := window.Limit(daterange.MaxWindowDays); err != nil {
		return daterange.DateRange{}, err
	}
	return window, nil
}

func parseWindow(from, to string, start time.Time, days int) (daterange.DateRange, error) {
	if from == "" && to == "" {
		return daterange.New(start, start.AddDate(0, 0, days))
	}
	if from == "" {
		end, err := daterange.ParseDay(to)
		if err != nil {
			return daterange.DateRange{}, err
		}
		return daterange.New(end.AddDate(0, 0, -days), end)
	}
	if to == "" {
		begin, err := daterange.ParseDay(from)
		if err != nil {
			return daterange.DateRange{}, err
		}
		return daterange.New(begin, begin.AddDate(0, 0, days))
	}
	return daterange.Parse(from, to)
}

var _ queries.Handler[GetAvailabilityQuery, dto.Availability] = (*GetAvailabilityHandler)(nil)
