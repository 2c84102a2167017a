package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker relays outbox entries to the producer as CloudEvents.
type Worker struct {
	Store       Store
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	Logger      *slog.Logger
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	var notify <-chan struct{}
	if n, ok := w.Store.(Notifier); ok {
		notify = n.Notify()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-notify:
		}
		if err := w.Drain(ctx); err != nil {
			return err
		}
	}
}

// Drain delivers entries until the store has nothing claimable.
func (w *Worker) Drain(ctx context.Context) error {
	for {
		delivered, err := w.processOnce(ctx)
		if err != nil || !delivered {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (w *Worker) processOnce(ctx context.Context) (bool, error) {
	entry, err := w.Store.Claim(ctx, w.workerID())
	if err != nil || entry == nil {
		return false, err
	}
	topic := w.topicFor(entry.Name)
	payload, headers, err := w.formatPayload(entry)
	if err == nil {
		err = w.Producer.Publish(ctx, topic, entry.Aggregate, payload, headers)
	}
	if err != nil {
		if w.Logger != nil {
			w.Logger.Warn("outbox delivery failed", "event_id", entry.ID, "event", entry.Name, "attempts", entry.Attempts+1, "error", err)
		}
		return true, w.Store.MarkFailed(ctx, entry.ID, w.nextRetry(entry.Attempts), err.Error())
	}
	return true, w.Store.MarkSent(ctx, entry.ID)
}

func (w *Worker) formatPayload(entry *Entry) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(entry.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              entry.ID,
		"type":            entry.Name + ".v1",
		"source":          w.source(),
		"subject":         entry.Aggregate,
		"time":            entry.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := entry.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
	}
	for k, v := range entry.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// TopicFor maps "booking.status_changed" to "booking.events.v1".
func TopicFor(prefix, name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return prefix + base + ".events.v1"
}

func (w *Worker) topicFor(name string) string {
	return TopicFor(w.TopicPrefix, name)
}

func (w *Worker) workerID() string {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return w.ID
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return time.Now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return time.Now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return time.Now().Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://rara"
}
