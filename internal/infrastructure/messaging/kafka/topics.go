package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// Topic suffixes. The full topic name is "<prefix>.<suffix>", e.g.
// "safeharbor.report.created".
const (
	TopicSuffixCreated       = "created"
	TopicSuffixAcknowledged  = "acknowledged"
	TopicSuffixStatusChanged = "status_changed"
	TopicSuffixMessageAdded  = "message_added"
)

// EventEnvelope is the wire format for every published event. Consumers
// dispatch on EventType before decoding Payload.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	AggregateID   string          `json:"aggregate_id"`
	Payload       json.RawMessage `json:"payload"`
}

const envelopeSource = "safeharbor-api"

// NewEventEnvelope wraps a domain event payload for publishing.
func NewEventEnvelope(eventType string, event common.DomainEvent) (*EventEnvelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        envelopeSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		AggregateID:   event.AggregateID(),
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the envelope payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeValidation, "empty event payload")
	}
	return json.Unmarshal(e.Payload, target)
}

// routeEvent maps a domain event to its topic suffix and event type name.
func routeEvent(event common.DomainEvent) (suffix, eventType string, err error) {
	switch event.(type) {
	case *report.ReportCreatedEvent:
		return TopicSuffixCreated, "report.created", nil
	case *report.ReportAcknowledgedEvent:
		return TopicSuffixAcknowledged, "report.acknowledged", nil
	case *report.StatusChangedEvent:
		return TopicSuffixStatusChanged, "report.status_changed", nil
	case *report.MessageAddedEvent:
		return TopicSuffixMessageAdded, "report.message_added", nil
	default:
		return "", "", errors.New(errors.ErrCodeValidation, "unroutable event type")
	}
}

//Personal.AI order the ending
