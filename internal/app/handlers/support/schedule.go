package support

import (
	"context"
	"time"

	"rara/internal/app/access"
	"rara/internal/app/uow"
	domainavailability "rara/internal/domain/availability"
	domainbooking "rara/internal/domain/booking"
	domainproperty "rara/internal/domain/property"
)

// LoadSchedule assembles the availability predicate for one property from the
// stays that block the calendar and the host's calendar.
func LoadSchedule(ctx context.Context, unit uow.UnitOfWork, id domainproperty.ID, today time.Time) (domainavailability.Schedule, *domainavailability.Calendar, []*domainbooking.Booking, error) {
	stays, err := unit.Bookings().List(ctx, domainbooking.Filter{
		PropertyID: id,
		Statuses:   []domainbooking.Status{domainbooking.StatusConfirmed, domainbooking.StatusCompleted},
	})
	if err != nil {
		return domainavailability.Schedule{}, nil, nil, err
	}
	calendar, err := unit.Calendars().Calendar(ctx, id)
	if err != nil {
		return domainavailability.Schedule{}, nil, nil, err
	}
	return domainavailability.NewSchedule(today, stays, calendar), calendar, stays, nil
}

// LoadOwnedProperty returns the property when actor owns it. Admins pass too
// when allowAdmin is set.
func LoadOwnedProperty(ctx context.Context, unit uow.UnitOfWork, id string, actor access.Actor, allowAdmin bool) (*domainproperty.Property, error) {
	p, err := unit.Properties().ByID(ctx, domainproperty.ID(id))
	if err != nil {
		return nil, err
	}
	if p.OwnedBy(actor.ID) || (allowAdmin && actor.IsAdmin()) {
		return p, nil
	}
	return nil, ErrNotOwner
}
