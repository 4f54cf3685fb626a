package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"wishlist/pkg/platform/circuit"
	"wishlist/pkg/platform/sentinel"
)

const defaultProduceTimeout = 3 * time.Second

// producer is the subset of *kgo.Client the Kafka store uses.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaStore publishes audit events to a topic, keyed by item id so one
// item's history stays ordered within a partition. A circuit breaker sheds
// events while the cluster is unreachable.
type KafkaStore struct {
	client  producer
	breaker *circuit.Breaker
	timeout time.Duration
	logger  *slog.Logger
}

// NewKafkaStore connects a franz-go producer to brokers.
func NewKafkaStore(brokers []string, topic string, logger *slog.Logger) (*KafkaStore, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return newKafkaStore(client, logger), nil
}

func newKafkaStore(client producer, logger *slog.Logger) *KafkaStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaStore{
		client:  client,
		breaker: circuit.New("audit_kafka", circuit.WithFailureThreshold(5), circuit.WithCooldown(30*time.Second)),
		timeout: defaultProduceTimeout,
		logger:  logger,
	}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	if !s.breaker.Allow() {
		return sentinel.ErrUnavailable
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	record := &kgo.Record{
		Key:   []byte(strconv.FormatInt(event.ItemID, 10)),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "audit kafka circuit opened", "error", err)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "audit kafka circuit closed")
	}
	return nil
}

func (s *KafkaStore) Close() {
	s.client.Close()
}
