package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/claimtrack/internal/application/dashboard"
	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/pkg/errors"
)

const (
	TopicDashboardViewed       = "claim.dashboard.viewed"
	TopicClaimRecordUpdated    = "claim.record.updated"
	TopicClaimRecordDeadLetter = "claim.record.updated.dlq"

	EventTypeDashboardViewed    = "DashboardViewed"
	EventTypeClaimRecordUpdated = "ClaimRecordUpdated"
	SchemaVersion               = "v1"
)

// EventEnvelope wraps every event payload written by claimtrack.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEventEnvelope assigns a fresh id when eventID is empty.
func NewEventEnvelope(eventID, eventType, source string, at time.Time, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}
	return &EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		Source:        source,
		Timestamp:     at.UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       data,
	}, nil
}

func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeValidation, "empty event payload")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode payload")
	}
	return nil
}

// ToMessage keys the message so that all events for one claim land on the
// same partition.
func (e *EventEnvelope) ToMessage(topic string, key string) (*Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return &Message{
		Topic: topic,
		Key:   []byte(key),
		Value: val,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Timestamp: e.Timestamp,
	}, nil
}

func DecodeEnvelope(value []byte) (*EventEnvelope, error) {
	if len(value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode envelope")
	}
	return &env, nil
}

type publisher interface {
	Publish(ctx context.Context, msg *Message) error
}

// DashboardPublisher implements dashboard.EventPublisher on a Producer.
type DashboardPublisher struct {
	producer publisher
	topic    string
	source   string
}

var _ dashboard.EventPublisher = (*DashboardPublisher)(nil)

// NewDashboardPublisher defaults topic to TopicDashboardViewed.
func NewDashboardPublisher(p *Producer, topic, source string) *DashboardPublisher {
	if topic == "" {
		topic = TopicDashboardViewed
	}
	return &DashboardPublisher{producer: p, topic: topic, source: source}
}

func (d *DashboardPublisher) PublishDashboardViewed(ctx context.Context, event *dashboard.ViewedEvent) error {
	if event == nil {
		return errors.InvalidParam("event is required")
	}
	env, err := NewEventEnvelope(event.EventID, EventTypeDashboardViewed, d.source, event.OccurredAt, event)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(d.topic, event.ExternalID)
	if err != nil {
		return err
	}
	return d.producer.Publish(ctx, msg)
}

// RecordApplier stores a claim record received from the upstream claim store.
type RecordApplier interface {
	Apply(ctx context.Context, rec *claim.Record) error
}

// RecordUpdateHandler decodes ClaimRecordUpdated envelopes and hands the
// record to applier. The message key, when present, must match the
// record's external id.
func RecordUpdateHandler(applier RecordApplier) MessageHandler {
	return func(ctx context.Context, msg *Message) error {
		env, err := DecodeEnvelope(msg.Value)
		if err != nil {
			return err
		}
		if env.EventType != EventTypeClaimRecordUpdated {
			return errors.New(errors.ErrCodeValidation, "unexpected event type").
				WithDetail("event_type=" + env.EventType)
		}
		var rec claim.Record
		if err := env.DecodePayload(&rec); err != nil {
			return err
		}
		if len(msg.Key) > 0 && string(msg.Key) != rec.ExternalID {
			return errors.New(errors.ErrCodeValidation, "message key does not match record").
				WithDetail("key=" + string(msg.Key) + " external_id=" + rec.ExternalID)
		}
		return applier.Apply(ctx, &rec)
	}
}
