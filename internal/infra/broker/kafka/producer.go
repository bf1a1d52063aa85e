package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/IBM/sarama"
)

var ErrNoBrokers = errors.New("kafka: at least one broker is required")

// ProducerConfig selects the cluster. Version defaults to sarama's default
// protocol version when zero.
type ProducerConfig struct {
	Brokers  []string
	ClientID string
	Version  sarama.KafkaVersion
}

// saramaConfig enables the idempotent producer, which needs acks from all
// in-sync replicas and a single in-flight request per connection.
func (c ProducerConfig) saramaConfig() *sarama.Config {
	sc := sarama.NewConfig()
	if c.ClientID != "" {
		sc.ClientID = c.ClientID
	}
	if c.Version != (sarama.KafkaVersion{}) {
		sc.Version = c.Version
	}
	sc.Producer.Idempotent = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Return.Successes = true
	sc.Net.MaxOpenRequests = 1
	return sc
}

// Producer publishes outbox records synchronously.
type Producer struct {
	sync sarama.SyncProducer
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	sp, err := sarama.NewSyncProducer(cfg.Brokers, cfg.saramaConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka: connect: %w", err)
	}
	return newProducer(sp), nil
}

func newProducer(sp sarama.SyncProducer) *Producer {
	return &Producer{sync: sp}
}

// Publish blocks until the broker acknowledges the record.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: recordHeaders(headers),
	}
	if _, _, err := p.sync.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka: publish to %s: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p == nil || p.sync == nil {
		return nil
	}
	return p.sync.Close()
}

// recordHeaders orders headers by name so equal maps produce equal records.
func recordHeaders(headers map[string]string) []sarama.RecordHeader {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]sarama.RecordHeader, len(names))
	for i, name := range names {
		out[i] = sarama.RecordHeader{Key: []byte(name), Value: []byte(headers[name])}
	}
	return out
}

// LogProducer stands in for Kafka when no brokers are configured.
type LogProducer struct {
	Logger *slog.Logger
}

func (p LogProducer) Publish(ctx context.Context, topic, key string, payload []byte, _ map[string]string) error {
	if p.Logger != nil {
		p.Logger.DebugContext(ctx, "event published", "topic", topic, "key", key, "bytes", len(payload))
	}
	return nil
}
