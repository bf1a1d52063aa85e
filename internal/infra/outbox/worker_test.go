package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "flatfinder/internal/app/outbox"
	"flatfinder/internal/infra/outbox"
	"flatfinder/internal/infra/storage/memory"
)

type message struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type recordingProducer struct {
	mu   sync.Mutex
	fail error
	sent []message
}

func (p *recordingProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.sent = append(p.sent, message{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func seed(t *testing.T, store *memory.Store, records ...appoutbox.EventRecord) {
	t.Helper()
	require.NoError(t, store.Append(context.Background(), records))
}

func TestDrainPublishesCloudEvents(t *testing.T) {
	store := memory.NewStore()
	at := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	seed(t, store,
		appoutbox.EventRecord{ID: "ev-1", Name: "booking.created", Aggregate: "bk-1", OccurredAt: at, Payload: []byte(`{"listing_id":"l-1"}`), Headers: map[string]string{"traceparent": "00-abc"}},
		appoutbox.EventRecord{ID: "ev-2", Name: "availability.reserved", Aggregate: "l-1", OccurredAt: at, Payload: []byte(`{}`)},
	)
	producer := &recordingProducer{}
	w := &outbox.Worker{Store: store, Producer: producer, TopicPrefix: "ff."}

	sent, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, producer.sent, 2)

	first := producer.sent[0]
	assert.Equal(t, "ff.booking.events.v1", first.topic)
	assert.Equal(t, "bk-1", first.key)
	assert.Equal(t, "application/cloudevents+json", first.headers["content-type"])
	assert.Equal(t, "00-abc", first.headers["traceparent"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(first.payload, &evt))
	assert.Equal(t, "1.0", evt["specversion"])
	assert.Equal(t, "booking.created.v1", evt["type"])
	assert.Equal(t, "app://flatfinder", evt["source"])
	assert.Equal(t, "00-abc", evt["traceparent"])
	assert.Equal(t, map[string]any{"listing_id": "l-1"}, evt["data"])

	assert.Equal(t, "ff.availability.events.v1", producer.sent[1].topic)

	sent, err = w.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent, "sent records are not claimed again")
}

func TestDrainBacksOffFailedPublishes(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, appoutbox.EventRecord{ID: "ev-1", Name: "booking.created", Payload: []byte(`{}`)})
	producer := &recordingProducer{fail: errors.New("broker down")}
	w := &outbox.Worker{Store: store, Producer: producer, Backoff: []time.Duration{time.Hour}}

	sent, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent, "a failed attempt still counts as processed")

	producer.fail = nil
	sent, err = w.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent, "record waits for its retry time")
	assert.Empty(t, producer.sent)
}

func TestDrainMarksUndecodablePayloadFailed(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, appoutbox.EventRecord{ID: "ev-1", Name: "booking.created", Payload: []byte(`not json`)})
	producer := &recordingProducer{}
	w := &outbox.Worker{Store: store, Producer: producer, Backoff: []time.Duration{time.Hour}}

	_, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Empty(t, producer.sent)
}

func TestDrainRespectsBatchSize(t *testing.T) {
	store := memory.NewStore()
	for _, id := range []string{"a", "b", "c"} {
		seed(t, store, appoutbox.EventRecord{ID: id, Name: "listing.created", Payload: []byte(`{}`)})
	}
	producer := &recordingProducer{}
	w := &outbox.Worker{Store: store, Producer: producer, BatchSize: 2}

	sent, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	sent, err = w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestRunRequiresDependencies(t *testing.T) {
	w := &outbox.Worker{}
	assert.ErrorIs(t, w.Run(context.Background()), outbox.ErrWorkerNotConfigured)
}

func TestRunStopsOnCancel(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, appoutbox.EventRecord{ID: "ev-1", Name: "booking.created", Payload: []byte(`{}`)})
	producer := &recordingProducer{}
	w := &outbox.Worker{Store: store, Producer: producer, Interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		producer.mu.Lock()
		defer producer.mu.Unlock()
		return len(producer.sent) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
