package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	entries []*Entry
	sent    []string
	failed  map[string]time.Time
}

func (s *fakeStore) Claim(ctx context.Context, workerID string) (*Entry, error) {
	if len(s.entries) == 0 {
		return nil, nil
	}
	e := s.entries[0]
	s.entries = s.entries[1:]
	return e, nil
}

func (s *fakeStore) MarkSent(ctx context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	if s.failed == nil {
		s.failed = map[string]time.Time{}
	}
	s.failed[id] = next
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	out []published
	err error
}

func (p *fakeProducer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.out = append(p.out, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func TestDrainPublishesCloudEvents(t *testing.T) {
	at := time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{entries: []*Entry{{
		ID:         "E1",
		Name:       "booking.status_changed",
		Payload:    []byte(`{"bookingId":"B1","to":"Confirmed"}`),
		OccurredAt: at,
		Aggregate:  "B1",
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, TopicPrefix: "dev.", Source: "rara/test"}

	require.NoError(t, w.Drain(context.Background()))

	require.Len(t, producer.out, 1)
	msg := producer.out[0]
	assert.Equal(t, "dev.booking.events.v1", msg.topic)
	assert.Equal(t, "B1", msg.key)
	assert.Equal(t, "application/cloudevents+json", msg.headers["content-type"])
	assert.Equal(t, "00-abc-def-01", msg.headers["traceparent"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &evt))
	assert.Equal(t, "E1", evt["id"])
	assert.Equal(t, "booking.status_changed.v1", evt["type"])
	assert.Equal(t, "rara/test", evt["source"])
	assert.Equal(t, "B1", evt["subject"])
	assert.Equal(t, map[string]any{"bookingId": "B1", "to": "Confirmed"}, evt["data"])
	assert.Equal(t, []string{"E1"}, store.sent)
}

func TestFailedDeliveryIsRescheduled(t *testing.T) {
	store := &fakeStore{entries: []*Entry{{ID: "E1", Name: "booking.requested", Payload: []byte(`{}`), Attempts: 1}}}
	w := &Worker{
		Store:    store,
		Producer: &fakeProducer{err: errors.New("broker down")},
		Backoff:  []time.Duration{time.Second, time.Hour},
	}

	before := time.Now()
	require.NoError(t, w.Drain(context.Background()))

	require.Contains(t, store.failed, "E1")
	assert.WithinDuration(t, before.Add(time.Hour), store.failed["E1"], time.Minute)
	assert.Empty(t, store.sent)
}

func TestRunRequiresDependencies(t *testing.T) {
	err := (&Worker{}).Run(context.Background())

	assert.ErrorIs(t, err, ErrWorkerNotConfigured)
}

func TestTopicFor(t *testing.T) {
	assert.Equal(t, "booking.events.v1", TopicFor("", "booking.requested"))
	assert.Equal(t, "prod.property.events.v1", TopicFor("prod.", "property.review_added"))
	assert.Equal(t, "misc.events.v1", TopicFor("", "misc"))
}
