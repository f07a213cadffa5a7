package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/segmentio/kafka-go"

	"github.com/safeharbor-io/safeharbor/internal/config"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/pkg/errors"
)

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EnvelopeHandler processes one decoded event envelope. A returned error
// leaves the message uncommitted so it is redelivered.
type EnvelopeHandler func(ctx context.Context, env *EventEnvelope) error

// Consumer reads report events from the configured topics and dispatches
// them to a handler. Malformed messages are committed and dropped; they
// would never decode on redelivery either.
type Consumer struct {
	reader  ReaderInterface
	handler EnvelopeHandler
	logger  logging.Logger
	closed  atomic.Bool
}

// NewConsumer builds a Consumer subscribed to every report topic under the
// configured prefix.
func NewConsumer(cfg config.KafkaConfig, handler EnvelopeHandler, log logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if handler == nil {
		return nil, errors.New(errors.ErrCodeValidation, "envelope handler required")
	}

	prefix := cfg.TopicPrefix
	if prefix == "" {
		prefix = "safeharbor.report"
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.GroupID,
		GroupTopics: []string{
			prefix + "." + TopicSuffixCreated,
			prefix + "." + TopicSuffixAcknowledged,
			prefix + "." + TopicSuffixStatusChanged,
			prefix + "." + TopicSuffixMessageAdded,
		},
	})
	return NewConsumerWithReader(reader, handler, log), nil
}

// NewConsumerWithReader builds a Consumer over an existing reader.
func NewConsumerWithReader(reader ReaderInterface, handler EnvelopeHandler, log logging.Logger) *Consumer {
	return &Consumer{
		reader:  reader,
		handler: handler,
		logger:  log,
	}
}

// Run consumes until ctx is cancelled or the consumer is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if c.closed.Load() {
				return nil
			}
			c.logger.Error("Failed to fetch message", logging.Err(err))
			continue
		}

		var env EventEnvelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			c.logger.Warn("Dropping undecodable message",
				logging.String("topic", msg.Topic),
				logging.Err(err),
			)
			c.commit(ctx, msg)
			continue
		}

		if err := c.handler(ctx, &env); err != nil {
			c.logger.Error("Event handler failed, message left for redelivery",
				logging.String("topic", msg.Topic),
				logging.String("event_type", env.EventType),
				logging.Err(err),
			)
			continue
		}
		c.commit(ctx, msg)
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit offset",
			logging.String("topic", msg.Topic),
			logging.Err(err),
		)
	}
}

func (c *Consumer) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.reader.Close()
}

//Personal.AI order the ending
