package outbox

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"rara/internal/domain/shared/events"
)

// EventRecord is a domain event serialised for the relay.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// AggregateType is the event name prefix, e.g. "booking" for "booking.requested".
func (r EventRecord) AggregateType() string {
	if i := strings.IndexByte(r.Name, '.'); i > 0 {
		return r.Name[:i]
	}
	return r.Name
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}, nil
}

func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Drainer is implemented by aggregates embedding events.EventRecorder.
type Drainer interface {
	Drain() []events.DomainEvent
}

// RecordFrom drains pending events from each aggregate into the outbox.
func RecordFrom(ctx context.Context, box Outbox, encoder EventEncoder, aggregates ...Drainer) error {
	var evs []events.DomainEvent
	for _, agg := range aggregates {
		if agg != nil {
			evs = append(evs, agg.Drain()...)
		}
	}
	return RecordDomainEvents(ctx, box, encoder, evs)
}
