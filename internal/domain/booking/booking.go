package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"rara/internal/domain/pricing"
	"rara/internal/domain/property"
	"rara/internal/domain/shared/daterange"
	"rara/internal/domain/shared/events"
)

var (
	ErrNotFound          = errors.New("booking: not found")
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrInvalidStatus     = errors.New("booking: unknown status")
	ErrGuestRequired     = errors.New("booking: guest is required")
	ErrHostRequired      = errors.New("booking: host is required")
	ErrNotDeletable      = errors.New("booking: only pending or cancelled bookings can be deleted")
)

type ID string

type Status string

const (
	StatusPending   Status = "Pending Confirmation"
	StatusConfirmed Status = "Confirmed"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// ParseStatus accepts the display name, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}

// BlocksCalendar reports whether a booking in this status makes its nights unavailable.
func (s Status) BlocksCalendar() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from → to is an edge of the lifecycle.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Party is a participant snapshot stored on the booking.
type Party struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
}

type Booking struct {
	ID            ID
	PropertyID    property.ID
	PropertyTitle string
	Guest         Party
	Host          Party
	Range         daterange.DateRange
	Price         pricing.PriceBreakdown
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id ID) error
	List(ctx context.Context, filter Filter) ([]*Booking, error)
}

// Filter narrows List; zero values match everything.
type Filter struct {
	GuestID    string
	HostID     string
	PropertyID property.ID
	Statuses   []Status
}

func (f Filter) Matches(b *Booking) bool {
	if f.GuestID != "" && b.Guest.ID != f.GuestID {
		return false
	}
	if f.HostID != "" && b.Host.ID != f.HostID {
		return false
	}
	if f.PropertyID != "" && b.PropertyID != f.PropertyID {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

type CreateParams struct {
	ID            ID
	PropertyID    property.ID
	PropertyTitle string
	Guest         Party
	Host          Party
	Range         daterange.DateRange
	Price         pricing.PriceBreakdown
	CreatedAt     time.Time
}

// New creates a reservation request awaiting confirmation.
func New(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(params.Guest.ID) == "" {
		return nil, ErrGuestRequired
	}
	if strings.TrimSpace(params.Host.ID) == "" {
		return nil, ErrHostRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	price := params.Price.Copy()
	if err := price.RecalculateTotal(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:            params.ID,
		PropertyID:    params.PropertyID,
		PropertyTitle: params.PropertyTitle,
		Guest:         params.Guest,
		Host:          params.Host,
		Range:         params.Range,
		Price:         price,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.Record(Requested{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		GuestID:    b.Guest.ID,
		HostID:     b.Host.ID,
		From:       b.Range.CheckIn,
		To:         b.Range.CheckOut,
		Total:      b.Price.Total.Amount,
		At:         now,
	})
	return b, nil
}

// TransitionTo moves the booking along the lifecycle.
func (b *Booking) TransitionTo(next Status, reason string, now time.Time) error {
	if !CanTransition(b.Status, next) {
		return ErrInvalidTransition
	}
	previous := b.Status
	b.Status = next
	b.UpdatedAt = now.UTC()
	b.Record(StatusChanged{
		BookingID:     b.ID,
		PropertyID:    b.PropertyID,
		PropertyTitle: b.PropertyTitle,
		GuestID:       b.Guest.ID,
		GuestName:     b.Guest.Name,
		HostID:        b.Host.ID,
		From:          previous,
		To:            next,
		Reason:        reason,
		At:            b.UpdatedAt,
	})
	return nil
}

func (b *Booking) Confirm(now time.Time) error {
	return b.TransitionTo(StatusConfirmed, "", now)
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	return b.TransitionTo(StatusCancelled, reason, now)
}

func (b *Booking) Complete(now time.Time) error {
	return b.TransitionTo(StatusCompleted, "", now)
}

// StayEnded reports whether the checkout day is today or earlier.
func (b *Booking) StayEnded(today time.Time) bool {
	return !b.Range.CheckOut.After(daterange.Day(today))
}

// EnsureDeletable guards the guest delete endpoint.
func (b *Booking) EnsureDeletable() error {
	if b.Status != StatusPending && b.Status != StatusCancelled {
		return ErrNotDeletable
	}
	return nil
}

// MarkDeleted records the removal; the repository performs the delete.
func (b *Booking) MarkDeleted(now time.Time) {
	b.Record(Deleted{BookingID: b.ID, At: now.UTC()})
}

func (b *Booking) Involves(userID string) bool {
	return userID != "" && (b.Guest.ID == userID || b.Host.ID == userID)
}

func (b *Booking) Clone() *Booking {
	return &Booking{
		ID:            b.ID,
		PropertyID:    b.PropertyID,
		PropertyTitle: b.PropertyTitle,
		Guest:         b.Guest,
		Host:          b.Host,
		Range:         b.Range,
		Price:         b.Price.Copy(),
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		Version:       b.Version,
	}
}
