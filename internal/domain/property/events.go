package property

import (
	"time"

	"rara/internal/domain/reviews"
)

type Created struct {
	PropertyID ID        `json:"propertyId"`
	HostID     string    `json:"hostId"`
	Title      string    `json:"title"`
	At         time.Time `json:"at"`
}

func (e Created) EventName() string     { return "property.created" }
func (e Created) AggregateID() string   { return string(e.PropertyID) }
func (e Created) OccurredAt() time.Time { return e.At }

type Updated struct {
	PropertyID ID        `json:"propertyId"`
	At         time.Time `json:"at"`
}

func (e Updated) EventName() string     { return "property.updated" }
func (e Updated) AggregateID() string   { return string(e.PropertyID) }
func (e Updated) OccurredAt() time.Time { return e.At }

type StatusChanged struct {
	PropertyID ID        `json:"propertyId"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	At         time.Time `json:"at"`
}

func (e StatusChanged) EventName() string     { return "property.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.PropertyID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }

type Deleted struct {
	PropertyID ID        `json:"propertyId"`
	At         time.Time `json:"at"`
}

func (e Deleted) EventName() string     { return "property.deleted" }
func (e Deleted) AggregateID() string   { return string(e.PropertyID) }
func (e Deleted) OccurredAt() time.Time { return e.At }

type ReviewAdded struct {
	PropertyID ID               `json:"propertyId"`
	ReviewID   reviews.ReviewID `json:"reviewId"`
	BookingID  string           `json:"bookingId"`
	Rating     float64          `json:"rating"`
	NewRating  float64          `json:"newRating"`
	At         time.Time        `json:"at"`
}

func (e ReviewAdded) EventName() string     { return "property.review_added" }
func (e ReviewAdded) AggregateID() string   { return string(e.PropertyID) }
func (e ReviewAdded) OccurredAt() time.Time { return e.At }
