package uow

import (
	"context"
	"errors"

	domainavailability "rara/internal/domain/availability"
	domainbooking "rara/internal/domain/booking"
	domainproperty "rara/internal/domain/property"
	domainuser "rara/internal/domain/user"
)

// ErrConcurrentUpdate is returned by Save when the stored version moved underneath the caller.
var ErrConcurrentUpdate = errors.New("uow: concurrent update detected")

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Properties() domainproperty.Repository
	Bookings() domainbooking.Repository
	Calendars() domainavailability.Repository
	Users() domainuser.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

// ReadOnlyCommand is implemented by commands that never write through the unit.
type ReadOnlyCommand interface {
	ReadOnly() bool
}
