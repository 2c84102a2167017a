package memory

import (
	"context"
	"errors"
	"sync"

	appoutbox "rara/internal/app/outbox"
	"rara/internal/app/uow"
	domainavailability "rara/internal/domain/availability"
	domainbooking "rara/internal/domain/booking"
	domainproperty "rara/internal/domain/property"
	domainuser "rara/internal/domain/user"
)

var (
	ErrReadOnly     = errors.New("memory: write in read-only unit of work")
	ErrUnitFinished = errors.New("memory: unit of work already finished")
)

// Store keeps every aggregate in process. Writing units are serialised; read
// units see the last committed state.
type Store struct {
	writer sync.Mutex
	mu     sync.RWMutex

	properties *table[domainproperty.ID, *domainproperty.Property]
	bookings   *table[domainbooking.ID, *domainbooking.Booking]
	calendars  *table[domainproperty.ID, *domainavailability.Calendar]
	users      *table[domainuser.ID, *domainuser.User]

	outbox *Outbox
}

func NewStore() *Store {
	return &Store{
		properties: newTable[domainproperty.ID](
			(*domainproperty.Property).Clone,
			func(p *domainproperty.Property) int64 { return p.Version },
			func(p *domainproperty.Property, v int64) { p.Version = v },
		),
		bookings: newTable[domainbooking.ID](
			(*domainbooking.Booking).Clone,
			func(b *domainbooking.Booking) int64 { return b.Version },
			func(b *domainbooking.Booking, v int64) { b.Version = v },
		),
		calendars: newTable[domainproperty.ID](
			(*domainavailability.Calendar).Clone,
			func(c *domainavailability.Calendar) int64 { return c.Version },
			func(c *domainavailability.Calendar, v int64) { c.Version = v },
		),
		users: newTable[domainuser.ID](
			(*domainuser.User).Clone,
			func(u *domainuser.User) int64 { return u.Version },
			func(u *domainuser.User, v int64) { u.Version = v },
		),
	}
}

// UseOutbox makes committed units publish their staged events to box.
func (s *Store) UseOutbox(box *Outbox) {
	s.outbox = box
}

// Factory opens units of work over a Store.
type Factory struct {
	Store *Store
}

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Store == nil {
		return nil, ErrFactoryMisconfigured
	}
	s := f.Store
	if !opts.ReadOnly {
		s.writer.Lock()
	}
	return &Unit{
		store:      s,
		readOnly:   opts.ReadOnly,
		properties: newOverlay(s.properties),
		bookings:   newOverlay(s.bookings),
		calendars:  newOverlay(s.calendars),
		users:      newOverlay(s.users),
	}, nil
}

// Unit stages writes until Commit.
type Unit struct {
	store    *Store
	readOnly bool
	done     bool

	properties *overlay[domainproperty.ID, *domainproperty.Property]
	bookings   *overlay[domainbooking.ID, *domainbooking.Booking]
	calendars  *overlay[domainproperty.ID, *domainavailability.Calendar]
	users      *overlay[domainuser.ID, *domainuser.User]
	events     []appoutbox.EventRecord
}

func (u *Unit) Properties() domainproperty.Repository    { return propertyRepository{u} }
func (u *Unit) Bookings() domainbooking.Repository       { return bookingRepository{u} }
func (u *Unit) Calendars() domainavailability.Repository { return calendarRepository{u} }
func (u *Unit) Users() domainuser.Repository             { return userRepository{u} }

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return ErrUnitFinished
	}
	u.done = true
	if u.readOnly {
		return nil
	}
	defer u.store.writer.Unlock()
	u.store.mu.Lock()
	u.properties.apply()
	u.bookings.apply()
	u.calendars.apply()
	u.users.apply()
	u.store.mu.Unlock()
	if u.store.outbox != nil && len(u.events) > 0 {
		u.store.outbox.append(u.events...)
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	if !u.readOnly {
		u.store.writer.Unlock()
	}
	return nil
}

func (u *Unit) stage(record appoutbox.EventRecord) {
	u.events = append(u.events, record)
}

func (u *Unit) read(fn func()) {
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	fn()
}

func (u *Unit) write(fn func() error) error {
	if u.readOnly {
		return ErrReadOnly
	}
	if u.done {
		return ErrUnitFinished
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	return fn()
}

var _ uow.UoWFactory = Factory{}
