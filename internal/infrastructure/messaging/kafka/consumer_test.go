package kafka

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/claimtrack/internal/testutil"
	"github.com/turtacn/claimtrack/pkg/errors"
)

// mockKafkaReader serves queued messages, then blocks until the context ends.
type mockKafkaReader struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	committed []kafka.Message
	closed    bool
}

func newMockKafkaReader(msgs ...kafka.Message) *mockKafkaReader {
	r := &mockKafkaReader{msgs: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *mockKafkaReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *mockKafkaReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *mockKafkaReader) commitCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*Message
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msg *Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) published() []*Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Message(nil), p.msgs...)
}

func testConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "test-group",
		Topics:  []string{"records"},
		Retry: RetryConfig{
			MaxRetries:      2,
			RetryBackoff:    time.Millisecond,
			MaxRetryBackoff: 2 * time.Millisecond,
			DeadLetterTopic: "records.dlq",
		},
	}
}

func runConsumer(t *testing.T, c *Consumer, r *mockKafkaReader, want int) {
	t.Helper()
	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return r.commitCount() == want }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
}

func TestValidateConsumerConfig(t *testing.T) {
	assert.NoError(t, ValidateConsumerConfig(testConsumerConfig()))

	cases := map[string]func(*ConsumerConfig){
		"brokers": func(c *ConsumerConfig) { c.Brokers = nil },
		"group":   func(c *ConsumerConfig) { c.GroupID = "" },
		"topics":  func(c *ConsumerConfig) { c.Topics = nil },
		"retries": func(c *ConsumerConfig) { c.Retry.MaxRetries = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConsumerConfig()
			mutate(&cfg)
			assert.True(t, errors.IsCode(ValidateConsumerConfig(cfg), errors.ErrCodeValidation))
		})
	}
}

func TestNewConsumer(t *testing.T) {
	c, err := NewConsumer(testConsumerConfig(), nil, nil)
	require.NoError(t, err)
	_, ok := c.reader.(*kafka.Reader)
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, c.config.CommitTimeout)
	assert.NoError(t, c.reader.Close())

	cfg := testConsumerConfig()
	cfg.SASLEnabled = true
	cfg.SASLMechanism = "GSSAPI"
	_, err = NewConsumer(cfg, nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestConsumer_DispatchesAndCommits(t *testing.T) {
	r := newMockKafkaReader(
		kafka.Message{Topic: "records", Partition: 2, Offset: 7, Key: []byte("k1"), Value: []byte("v1"),
			Headers: []kafka.Header{{Key: "event_type", Value: []byte("X")}}},
		kafka.Message{Topic: "records", Offset: 8, Key: []byte("k2"), Value: []byte("v2")},
	)
	c := newConsumerWithReader(r, testConsumerConfig(), nil, testutil.NewMockLogger())

	var mu sync.Mutex
	var got []*Message
	c.Subscribe("records", func(_ context.Context, msg *Message) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg)
		return nil
	})

	runConsumer(t, c, r, 2)

	require.Len(t, got, 2)
	assert.Equal(t, "k1", string(got[0].Key))
	assert.Equal(t, 2, got[0].Partition)
	assert.Equal(t, int64(7), got[0].Offset)
	assert.Equal(t, "X", got[0].Headers["event_type"])

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Consumed)
	assert.Equal(t, int64(2), stats.Processed)
	assert.Zero(t, stats.Failed)
	assert.True(t, r.closed)
}

func TestConsumer_RetriesThenSucceeds(t *testing.T) {
	r := newMockKafkaReader(kafka.Message{Topic: "records", Value: []byte("v")})
	c := newConsumerWithReader(r, testConsumerConfig(), nil, nil)

	calls := 0
	c.Subscribe("records", func(context.Context, *Message) error {
		calls++
		if calls < 2 {
			return stderrors.New("transient")
		}
		return nil
	})

	runConsumer(t, c, r, 1)
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(1), c.Stats().Retried)
	assert.Equal(t, int64(1), c.Stats().Processed)
}

func TestConsumer_ExhaustedGoesToDeadLetter(t *testing.T) {
	r := newMockKafkaReader(kafka.Message{Topic: "records", Key: []byte("k"), Value: []byte("v"),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte("ClaimRecordUpdated")}}})
	dl := &recordingPublisher{}
	logger := testutil.NewMockLogger()
	c := newConsumerWithReader(r, testConsumerConfig(), dl, logger)

	calls := 0
	c.Subscribe("records", func(context.Context, *Message) error {
		calls++
		return errors.Unavailable("db down")
	})

	runConsumer(t, c, r, 1)
	assert.Equal(t, 3, calls)

	msgs := dl.published()
	require.Len(t, msgs, 1)
	assert.Equal(t, "records.dlq", msgs[0].Topic)
	assert.Equal(t, "k", string(msgs[0].Key))
	assert.Equal(t, "records", msgs[0].Headers["original_topic"])
	assert.Equal(t, "ClaimRecordUpdated", msgs[0].Headers["event_type"])
	assert.Contains(t, msgs[0].Headers["error_message"], "db down")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(2), stats.Retried)
	assert.Equal(t, int64(1), stats.DeadLettered)
}

func TestConsumer_NonRetryableSkipsRetries(t *testing.T) {
	r := newMockKafkaReader(kafka.Message{Topic: "records", Value: []byte("v")})
	cfg := testConsumerConfig()
	cfg.Retry.Retryable = func(err error) bool { return !errors.IsInvalidRecord(err) }
	dl := &recordingPublisher{}
	c := newConsumerWithReader(r, cfg, dl, nil)

	calls := 0
	c.Subscribe("records", func(context.Context, *Message) error {
		calls++
		return errors.InvalidRecord("missing identity", "external_id is empty")
	})

	runConsumer(t, c, r, 1)
	assert.Equal(t, 1, calls)
	assert.Zero(t, c.Stats().Retried)
	assert.Len(t, dl.published(), 1)
}

func TestConsumer_DeadLetterFailureStillCommits(t *testing.T) {
	r := newMockKafkaReader(kafka.Message{Topic: "records", Value: []byte("v")})
	cfg := testConsumerConfig()
	cfg.Retry.MaxRetries = 0
	dl := &recordingPublisher{err: stderrors.New("broker down")}
	c := newConsumerWithReader(r, cfg, dl, nil)
	c.Subscribe("records", func(context.Context, *Message) error { return stderrors.New("boom") })

	runConsumer(t, c, r, 1)
	assert.Zero(t, c.Stats().DeadLettered)
	assert.Equal(t, int64(1), c.Stats().Failed)
}

func TestConsumer_UnknownTopicIsCommitted(t *testing.T) {
	r := newMockKafkaReader(kafka.Message{Topic: "elsewhere", Value: []byte("v")})
	logger := testutil.NewMockLogger()
	c := newConsumerWithReader(r, testConsumerConfig(), nil, logger)

	runConsumer(t, c, r, 1)

	var warned bool
	for _, m := range logger.GetMessages() {
		if m.Level == "warn" && m.Message == "no handler for topic" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestConsumer_StartTwice(t *testing.T) {
	r := newMockKafkaReader()
	c := newConsumerWithReader(r, testConsumerConfig(), nil, nil)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, errors.IsCode(c.Start(context.Background()), errors.ErrCodeConflict))
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestConsumer_StopsWithContext(t *testing.T) {
	r := newMockKafkaReader()
	c := newConsumerWithReader(r, testConsumerConfig(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx))
	cancel()

	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("consume loop did not stop")
	}
	assert.NoError(t, c.Close())
}
