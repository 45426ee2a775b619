package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/claimtrack/internal/application/dashboard"
	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/domain/narrative"
	"github.com/turtacn/claimtrack/internal/testutil"
	"github.com/turtacn/claimtrack/pkg/errors"
)

func TestNewEventEnvelope(t *testing.T) {
	at := time.Date(2024, time.March, 15, 12, 0, 0, 0, testutil.London)
	env, err := NewEventEnvelope("", "Test", "claimtrack", at, map[string]int{"n": 1})
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, time.UTC, env.Timestamp.Location())
	assert.Equal(t, SchemaVersion, env.SchemaVersion)

	var out map[string]int
	require.NoError(t, env.DecodePayload(&out))
	assert.Equal(t, 1, out["n"])

	_, err = NewEventEnvelope("", "Test", "claimtrack", at, make(chan int))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}

func TestDecodeEnvelope(t *testing.T) {
	_, err := DecodeEnvelope(nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
	_, err = DecodeEnvelope([]byte("{"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))

	env := &EventEnvelope{}
	assert.Error(t, env.DecodePayload(&struct{}{}))
}

func TestDashboardPublisher(t *testing.T) {
	w := &mockKafkaWriter{}
	pub := NewDashboardPublisher(newTestProducer(w), "", "claimtrack-api")

	event := &dashboard.ViewedEvent{
		EventID:      "evt-1",
		ExternalID:   testutil.ExternalID,
		Viewer:       narrative.ViewerDefendant,
		State:        claim.StateAwaitingResponse,
		Rule:         "awaiting_response",
		NarrativeKey: "dashboard.defendant.awaitingResponse",
		OccurredAt:   testutil.Now,
	}
	require.NoError(t, pub.PublishDashboardViewed(context.Background(), event))
	require.Len(t, w.written, 1)

	msg := w.written[0]
	assert.Equal(t, TopicDashboardViewed, msg.Topic)
	assert.Equal(t, testutil.ExternalID, string(msg.Key))
	assert.Contains(t, msg.Headers, kafka.Header{Key: "event_type", Value: []byte(EventTypeDashboardViewed)})

	env, err := DecodeEnvelope(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", env.EventID)
	assert.Equal(t, "claimtrack-api", env.Source)

	var got dashboard.ViewedEvent
	require.NoError(t, env.DecodePayload(&got))
	assert.Equal(t, event.ExternalID, got.ExternalID)
	assert.Equal(t, event.State, got.State)
	assert.True(t, event.OccurredAt.Equal(got.OccurredAt))

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Payload, &raw))
	assert.Equal(t, "DEFENDANT", raw["viewer"])
}

func TestDashboardPublisher_NilEvent(t *testing.T) {
	pub := NewDashboardPublisher(newTestProducer(&mockKafkaWriter{}), "custom.topic", "x")
	assert.Error(t, pub.PublishDashboardViewed(context.Background(), nil))
	assert.Equal(t, "custom.topic", pub.topic)
}

type recordingApplier struct {
	got *claim.Record
	err error
}

func (a *recordingApplier) Apply(_ context.Context, rec *claim.Record) error {
	a.got = rec
	return a.err
}

func recordUpdateMessage(t *testing.T, eventType, key string, payload interface{}) *Message {
	t.Helper()
	env, err := NewEventEnvelope("", eventType, "claim-store", testutil.Now, payload)
	require.NoError(t, err)
	msg, err := env.ToMessage(TopicClaimRecordUpdated, key)
	require.NoError(t, err)
	return msg
}

func TestRecordUpdateHandler(t *testing.T) {
	rec := testutil.NewRecord(testutil.WithDisputeDefence(claim.Yes))
	applier := &recordingApplier{}
	handle := RecordUpdateHandler(applier)

	msg := recordUpdateMessage(t, EventTypeClaimRecordUpdated, rec.ExternalID, rec)
	require.NoError(t, handle(context.Background(), msg))
	require.NotNil(t, applier.got)
	assert.Equal(t, rec.ExternalID, applier.got.ExternalID)
	assert.Equal(t, rec.ResponseDeadline, applier.got.ResponseDeadline)
	require.NotNil(t, applier.got.Response)
	assert.Equal(t, rec.Response.Kind, applier.got.Response.Kind)
}

func TestRecordUpdateHandler_Rejects(t *testing.T) {
	rec := testutil.NewRecord()
	handle := RecordUpdateHandler(&recordingApplier{})

	err := handle(context.Background(), &Message{Value: []byte("not json")})
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))

	err = handle(context.Background(), recordUpdateMessage(t, EventTypeDashboardViewed, rec.ExternalID, rec))
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	err = handle(context.Background(), recordUpdateMessage(t, EventTypeClaimRecordUpdated, "other-claim", rec))
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestRecordUpdateHandler_PropagatesApplyError(t *testing.T) {
	rec := testutil.NewRecord()
	applier := &recordingApplier{err: errors.Unavailable("db down")}

	err := RecordUpdateHandler(applier)(context.Background(), recordUpdateMessage(t, EventTypeClaimRecordUpdated, "", rec))
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}
