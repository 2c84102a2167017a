package availability

import (
	"time"

	"rara/internal/domain/property"
)

type Blocked struct {
	PropertyID property.ID `json:"propertyId"`
	BlockID    BlockID     `json:"blockId"`
	From       time.Time   `json:"from"`
	To         time.Time   `json:"to"`
	At         time.Time   `json:"at"`
}

func (e Blocked) EventName() string     { return "calendar.blocked" }
func (e Blocked) AggregateID() string   { return string(e.PropertyID) }
func (e Blocked) OccurredAt() time.Time { return e.At }

type Released struct {
	PropertyID property.ID `json:"propertyId"`
	BlockID    BlockID     `json:"blockId"`
	From       time.Time   `json:"from"`
	To         time.Time   `json:"to"`
	At         time.Time   `json:"at"`
}

func (e Released) EventName() string     { return "calendar.released" }
func (e Released) AggregateID() string   { return string(e.PropertyID) }
func (e Released) OccurredAt() time.Time { return e.At }
