package bookings

import (
	"context"

	"rara/internal/app/access"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/queries"
	"rara/internal/app/uow"
	domainbooking "rara/internal/domain/booking"
)

const (
	listBookingsKey = "bookings.list"
	getBookingKey   = "bookings.get"
)

const (
	ViewGuest = "guest"
	ViewHost  = "host"
	ViewAll   = "all"
)

// ListBookingsQuery lists the caller's bookings as guest or as host. The
// "all" view is reserved to admins.
type ListBookingsQuery struct {
	Actor  access.Actor
	As     string `validate:"omitempty,oneof=guest host all"`
	Status string
}

func (q ListBookingsQuery) Key() string          { return listBookingsKey }
func (q ListBookingsQuery) Caller() access.Actor { return q.Actor }

type GetBookingQuery struct {
	Actor     access.Actor
	BookingID string `validate:"required"`
}

func (q GetBookingQuery) Key() string          { return getBookingKey }
func (q GetBookingQuery) Caller() access.Actor { return q.Actor }

type BookingQueries struct {
	UoWFactory uow.UoWFactory
}

func (h *BookingQueries) List(ctx context.Context, q ListBookingsQuery) (dto.BookingCollection, error) {
	filter := domainbooking.Filter{}
	switch q.As {
	case "", ViewGuest:
		filter.GuestID = q.Actor.ID
	case ViewHost:
		filter.HostID = q.Actor.ID
	case ViewAll:
		if !q.Actor.IsAdmin() {
			return dto.BookingCollection{}, access.ErrForbidden
		}
	}
	if q.Status != "" {
		status, err := domainbooking.ParseStatus(q.Status)
		if err != nil {
			return dto.BookingCollection{}, err
		}
		filter.Statuses = []domainbooking.Status{status}
	}
	var result dto.BookingCollection
	err := support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		list, err := unit.Bookings().List(ctx, filter)
		if err != nil {
			return err
		}
		result = dto.MapBookings(list)
		return nil
	})
	return result, err
}

// Get returns a booking to its guest, its host or an admin.
func (h *BookingQueries) Get(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	var result dto.Booking
	err := support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.ID(q.BookingID))
		if err != nil {
			return err
		}
		if !b.Involves(q.Actor.ID) && !q.Actor.IsAdmin() {
			return support.ErrNotOwner
		}
		result = dto.MapBooking(b)
		return nil
	})
	return result, err
}

func (h *BookingQueries) ListHandler() queries.Handler[ListBookingsQuery, dto.BookingCollection] {
	return queries.HandlerFunc[ListBookingsQuery, dto.BookingCollection](h.List)
}

func (h *BookingQueries) GetHandler() queries.Handler[GetBookingQuery, dto.Booking] {
	return queries.HandlerFunc[GetBookingQuery, dto.Booking](h.Get)
}
