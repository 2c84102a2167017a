package reports

import (
	"context"
	"time"

	"rara/internal/app/access"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/availability"
	"rara/internal/app/handlers/support"
	"rara/internal/app/queries"
	"rara/internal/app/uow"
	"rara/internal/domain/shared/daterange"
)

const occupancyKey = "reports.occupancy"

// OccupancyQuery reports booked nights over a window, the current month by default.
type OccupancyQuery struct {
	Actor      access.Actor
	PropertyID string `validate:"required"`
	From       string
	To         string
}

func (q OccupancyQuery) Key() string          { return occupancyKey }
func (q OccupancyQuery) Caller() access.Actor { return q.Actor }

type OccupancyHandler struct {
	UoWFactory uow.UoWFactory
	Clock      func() time.Time
}

func (h *OccupancyHandler) Handle(ctx context.Context, q OccupancyQuery) (dto.Occupancy, error) {
	now := support.Now(h.Clock)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	window, err := monthWindow(q.From, q.To, monthStart)
	if err != nil {
		return dto.Occupancy{}, err
	}
	var result dto.Occupancy
	err = support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		p, err := support.LoadOwnedProperty(ctx, unit, q.PropertyID, q.Actor, true)
		if err != nil {
			return err
		}
		schedule, _, _, err := support.LoadSchedule(ctx, unit, p.ID, now)
		if err != nil {
			return err
		}
		occ := schedule.Occupancy(window)
		result = dto.Occupancy{
			PropertyID:   string(p.ID),
			From:         window.CheckIn.Format(daterange.DayLayout),
			To:           window.CheckOut.Format(daterange.DayLayout),
			Nights:       occ.Nights,
			BookedNights: occ.BookedNights,
			Rate:         occ.Rate,
			BlockedDays:  dto.FormatDays(occ.Unavailable),
		}
		return nil
	})
	return result, err
}

func monthWindow(from, to string, monthStart time.Time) (daterange.DateRange, error) {
	if from == "" && to == "" {
		return daterange.New(monthStart, monthStart.AddDate(0, 1, 0))
	}
	return availability.Window(from, to, monthStart, 30)
}

var _ queries.Handler[OccupancyQuery, dto.Occupancy] = (*OccupancyHandler)(nil)
