package booking

import (
	"time"

	"rara/internal/domain/property"
)

type Requested struct {
	BookingID  ID          `json:"bookingId"`
	PropertyID property.ID `json:"propertyId"`
	GuestID    string      `json:"guestId"`
	HostID     string      `json:"hostId"`
	From       time.Time   `json:"from"`
	To         time.Time   `json:"to"`
	Total      int64       `json:"total"`
	At         time.Time   `json:"at"`
}

func (e Requested) EventName() string     { return "booking.requested" }
func (e Requested) AggregateID() string   { return string(e.BookingID) }
func (e Requested) OccurredAt() time.Time { return e.At }

// StatusChanged carries enough context for notifications without a lookup.
type StatusChanged struct {
	BookingID     ID          `json:"bookingId"`
	PropertyID    property.ID `json:"propertyId"`
	PropertyTitle string      `json:"propertyTitle"`
	GuestID       string      `json:"guestId"`
	GuestName     string      `json:"guestName"`
	HostID        string      `json:"hostId"`
	From          Status      `json:"from"`
	To            Status      `json:"to"`
	Reason        string      `json:"reason,omitempty"`
	At            time.Time   `json:"at"`
}

func (e StatusChanged) EventName() string     { return "booking.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.BookingID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }

type Deleted struct {
	BookingID ID        `json:"bookingId"`
	At        time.Time `json:"at"`
}

func (e Deleted) EventName() string     { return "booking.deleted" }
func (e Deleted) AggregateID() string   { return string(e.BookingID) }
func (e Deleted) OccurredAt() time.Time { return e.At }
