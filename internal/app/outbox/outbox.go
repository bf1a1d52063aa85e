package outbox

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"flatfinder/internal/domain/shared/events"
)

type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Pending is a stored record handed to a relay worker.
type Pending struct {
	EventRecord
	Attempts int
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// Writer persists records using whatever transaction ctx carries.
type Writer interface {
	Append(ctx context.Context, records []EventRecord) error
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
		OccurredAt: ev.OccurredAt().UTC(),
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

type pendingKey struct{}

type pendingBuffer struct {
	mu      sync.Mutex
	records []EventRecord
}

// WithPending attaches a per-command buffer. Records added under the returned
// context are held until Flush.
func WithPending(ctx context.Context) context.Context {
	if _, ok := ctx.Value(pendingKey{}).(*pendingBuffer); ok {
		return ctx
	}
	return context.WithValue(ctx, pendingKey{}, &pendingBuffer{})
}

// Buffered collects records per command and hands them to the writer on Flush.
// Without a buffer in ctx, Add writes straight through.
type Buffered struct {
	writer Writer
}

func NewBuffered(w Writer) *Buffered {
	if w == nil {
		panic("outbox: writer required")
	}
	return &Buffered{writer: w}
}

func (b *Buffered) Add(ctx context.Context, record EventRecord) error {
	buf, ok := ctx.Value(pendingKey{}).(*pendingBuffer)
	if !ok {
		return b.writer.Append(ctx, []EventRecord{record})
	}
	buf.mu.Lock()
	buf.records = append(buf.records, record)
	buf.mu.Unlock()
	return nil
}

func (b *Buffered) Flush(ctx context.Context) error {
	buf, ok := ctx.Value(pendingKey{}).(*pendingBuffer)
	if !ok {
		return nil
	}
	buf.mu.Lock()
	records := buf.records
	buf.records = nil
	buf.mu.Unlock()
	if len(records) == 0 {
		return nil
	}
	return b.writer.Append(ctx, records)
}

var _ Outbox = (*Buffered)(nil)
