package memory

import (
	"context"
	"strings"

	"rara/internal/app/uow"
	domainavailability "rara/internal/domain/availability"
	domainbooking "rara/internal/domain/booking"
	domainproperty "rara/internal/domain/property"
	domainuser "rara/internal/domain/user"
)

type propertyRepository struct{ u *Unit }

func (r propertyRepository) ByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	var (
		p  *domainproperty.Property
		ok bool
	)
	r.u.read(func() { p, ok = r.u.properties.get(id) })
	if !ok {
		return nil, domainproperty.ErrNotFound
	}
	return p, nil
}

func (r propertyRepository) List(ctx context.Context, filter domainproperty.Filter) ([]*domainproperty.Property, error) {
	var out []*domainproperty.Property
	r.u.read(func() {
		out = r.u.properties.list(func(p *domainproperty.Property) bool {
			if filter.HostID != "" && p.Host.ID != filter.HostID {
				return false
			}
			return filter.Status == "" || p.Status == filter.Status
		})
	})
	return out, nil
}

func (r propertyRepository) Add(ctx context.Context, p *domainproperty.Property) error {
	return r.u.write(func() error {
		if r.u.properties.exists(p.ID) {
			return uow.ErrConcurrentUpdate
		}
		return r.u.properties.put(p.ID, p)
	})
}

func (r propertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	return r.u.write(func() error { return r.u.properties.put(p.ID, p) })
}

func (r propertyRepository) Delete(ctx context.Context, id domainproperty.ID) error {
	return r.u.write(func() error {
		if !r.u.properties.remove(id) {
			return domainproperty.ErrNotFound
		}
		return nil
	})
}

type bookingRepository struct{ u *Unit }

func (r bookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var (
		b  *domainbooking.Booking
		ok bool
	)
	r.u.read(func() { b, ok = r.u.bookings.get(id) })
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return b, nil
}

func (r bookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	return r.u.write(func() error { return r.u.bookings.put(b.ID, b) })
}

func (r bookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	return r.u.write(func() error {
		if !r.u.bookings.remove(id) {
			return domainbooking.ErrNotFound
		}
		return nil
	})
}

func (r bookingRepository) List(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Booking, error) {
	var out []*domainbooking.Booking
	r.u.read(func() { out = r.u.bookings.list(filter.Matches) })
	return out, nil
}

type calendarRepository struct{ u *Unit }

func (r calendarRepository) Calendar(ctx context.Context, id domainproperty.ID) (*domainavailability.Calendar, error) {
	var (
		c  *domainavailability.Calendar
		ok bool
	)
	r.u.read(func() { c, ok = r.u.calendars.get(id) })
	if !ok {
		return domainavailability.NewCalendar(id), nil
	}
	return c, nil
}

func (r calendarRepository) Save(ctx context.Context, c *domainavailability.Calendar) error {
	return r.u.write(func() error { return r.u.calendars.put(c.PropertyID, c) })
}

func (r calendarRepository) Delete(ctx context.Context, id domainproperty.ID) error {
	return r.u.write(func() error {
		r.u.calendars.remove(id)
		return nil
	})
}

type userRepository struct{ u *Unit }

func (r userRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	var (
		user *domainuser.User
		ok   bool
	)
	r.u.read(func() { user, ok = r.u.users.get(id) })
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return user, nil
}

func (r userRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	email = domainuser.NormalizeEmail(email)
	return r.first(func(u *domainuser.User) bool { return email != "" && u.Email == email })
}

func (r userRepository) ByGoogleID(ctx context.Context, googleID string) (*domainuser.User, error) {
	googleID = strings.TrimSpace(googleID)
	return r.first(func(u *domainuser.User) bool { return googleID != "" && u.GoogleID == googleID })
}

func (r userRepository) Save(ctx context.Context, user *domainuser.User) error {
	return r.u.write(func() error {
		for _, other := range r.u.users.list(func(o *domainuser.User) bool { return o.Email == user.Email }) {
			if other.ID != user.ID {
				return domainuser.ErrEmailAlreadyUsed
			}
		}
		return r.u.users.put(user.ID, user)
	})
}

func (r userRepository) first(match func(*domainuser.User) bool) (*domainuser.User, error) {
	var found []*domainuser.User
	r.u.read(func() { found = r.u.users.list(match) })
	if len(found) == 0 {
		return nil, domainuser.ErrNotFound
	}
	return found[0], nil
}
