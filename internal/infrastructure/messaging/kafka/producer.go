package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/safeharbor-io/safeharbor/internal/config"
	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

var (
	ErrProducerClosed = errors.New(errors.ErrCodeInternal, "producer closed")
	ErrPublishFailed  = errors.New(errors.ErrCodeInternal, "publish failed")
)

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes report domain events to the Kafka event stream. It
// implements report.EventPublisher; publish failures never fail the
// operation that raised the event, so callers log and move on.
type Producer struct {
	writer WriterInterface
	prefix string
	logger logging.Logger
	closed atomic.Bool
	sent   atomic.Int64
	failed atomic.Int64
}

// NewProducer builds a Producer over a kafka.Writer configured from cfg.
// Messages are keyed by report id so every event for a report lands on the
// same partition in order.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}

	retries := cfg.ProducerRetries
	if retries == 0 {
		retries = 3
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  retries + 1,
		BatchTimeout: batchTimeout,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
	}

	return &Producer{
		writer: writer,
		prefix: cfg.TopicPrefix,
		logger: log,
	}, nil
}

// NewProducerWithWriter builds a Producer over an existing writer.
func NewProducerWithWriter(writer WriterInterface, topicPrefix string, log logging.Logger) *Producer {
	return &Producer{
		writer: writer,
		prefix: topicPrefix,
		logger: log,
	}
}

var _ report.EventPublisher = (*Producer)(nil)

// Publish routes event to its topic and writes it as a versioned envelope.
func (p *Producer) Publish(ctx context.Context, event common.DomainEvent) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	suffix, eventType, err := routeEvent(event)
	if err != nil {
		return err
	}
	envelope, err := NewEventEnvelope(eventType, event)
	if err != nil {
		return err
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}

	msg := kafka.Message{
		Topic: p.topicName(suffix),
		Key:   []byte(event.AggregateID()),
		Value: value,
		Time:  envelope.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "schema_version", Value: []byte(envelope.SchemaVersion)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		p.logger.Error("Failed to publish event",
			logging.String("topic", msg.Topic),
			logging.String("event_type", eventType),
			logging.Err(err),
		)
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write kafka message")
	}

	p.sent.Add(1)
	p.logger.Debug("Published event",
		logging.String("topic", msg.Topic),
		logging.String("event_type", eventType),
		logging.String("aggregate_id", event.AggregateID()),
	)
	return nil
}

func (p *Producer) topicName(suffix string) string {
	if p.prefix == "" {
		return "safeharbor.report." + suffix
	}
	return p.prefix + "." + suffix
}

// Sent and Failed expose publish counters for health reporting.
func (p *Producer) Sent() int64   { return p.sent.Load() }
func (p *Producer) Failed() int64 { return p.failed.Load() }

func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}

//Personal.AI order the ending
