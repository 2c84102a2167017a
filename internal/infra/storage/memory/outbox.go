package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "rara/internal/app/outbox"
	"rara/internal/app/uow"
	infraoutbox "rara/internal/infra/outbox"
)

type outboxEntry struct {
	record  appoutbox.EventRecord
	sent    bool
	claimed bool
	attempt int
	next    time.Time
	lastErr string
}

// Outbox keeps events in process. Records added inside a unit of work become
// claimable only when that unit commits.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
	notify  chan struct{}
	now     func() time.Time
}

func NewOutbox() *Outbox {
	return &Outbox{notify: make(chan struct{}, 1), now: time.Now}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if unit, ok := uow.FromContext(ctx); ok {
		if mu, ok := unit.(*Unit); ok && mu.store.outbox == o && !mu.readOnly {
			mu.stage(record)
			return nil
		}
	}
	o.append(record)
	return nil
}

// Flush wakes the relay; pending records of an open unit wait for its commit.
func (o *Outbox) Flush(ctx context.Context) error {
	o.wake()
	return nil
}

func (o *Outbox) Notify() <-chan struct{} {
	return o.notify
}

func (o *Outbox) append(records ...appoutbox.EventRecord) {
	o.mu.Lock()
	now := o.now()
	for _, rec := range records {
		o.entries = append(o.entries, &outboxEntry{record: rec, next: now})
	}
	o.mu.Unlock()
	o.wake()
}

func (o *Outbox) wake() {
	select {
	case o.notify <- struct{}{}:
	default:
	}
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Entry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	for _, e := range o.entries {
		if e.sent || e.claimed || e.next.After(now) {
			continue
		}
		e.claimed = true
		headers := make(map[string]string, len(e.record.Headers))
		for k, v := range e.record.Headers {
			headers[k] = v
		}
		return &infraoutbox.Entry{
			ID:         e.record.ID,
			Name:       e.record.Name,
			Payload:    append([]byte(nil), e.record.Payload...),
			OccurredAt: e.record.OccurredAt,
			Aggregate:  e.record.Aggregate,
			Headers:    headers,
			Attempts:   e.attempt,
		}, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.entries[:0]
	for _, e := range o.entries {
		if e.record.ID == id {
			continue
		}
		kept = append(kept, e)
	}
	o.entries = kept
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.entries {
		if e.record.ID == id {
			e.claimed = false
			e.attempt++
			e.next = next
			e.lastErr = errMsg
		}
	}
	return nil
}

// Pending reports records not yet delivered.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, 0, len(o.entries))
	for _, e := range o.entries {
		out = append(out, e.record)
	}
	return out
}

var (
	_ appoutbox.Outbox     = (*Outbox)(nil)
	_ infraoutbox.Store    = (*Outbox)(nil)
	_ infraoutbox.Notifier = (*Outbox)(nil)
)
