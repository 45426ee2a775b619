package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/pkg/errors"
)

var ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")

// MessageHandler processes one consumed message.
type MessageHandler func(ctx context.Context, msg *Message) error

// RetryConfig controls redelivery of failed messages. A message whose
// handler still fails after MaxRetries is written to DeadLetterTopic when
// set, and is committed either way.
type RetryConfig struct {
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	DeadLetterTopic string
	// Retryable reports whether err is worth retrying. Nil retries every error.
	Retryable func(err error) bool
}

type ConsumerConfig struct {
	Brokers       []string
	GroupID       string
	Topics        []string
	StartAtLatest bool
	CommitTimeout time.Duration
	MaxWait       time.Duration
	SASLEnabled   bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
	TLSEnabled    bool
	TLSCAPath     string
	Retry         RetryConfig
}

func (cfg ConsumerConfig) security() security {
	return security{
		TLSEnabled:    cfg.TLSEnabled,
		TLSCAPath:     cfg.TLSCAPath,
		SASLEnabled:   cfg.SASLEnabled,
		SASLMechanism: cfg.SASLMechanism,
		SASLUsername:  cfg.SASLUsername,
		SASLPassword:  cfg.SASLPassword,
	}
}

// ConsumerMetrics counts consumer outcomes since start.
type ConsumerMetrics struct {
	MessagesConsumed     atomic.Int64
	MessagesProcessed    atomic.Int64
	MessagesFailed       atomic.Int64
	MessagesRetried      atomic.Int64
	MessagesDeadLettered atomic.Int64
	Lag                  atomic.Int64
}

// ConsumerStats is a point-in-time copy of ConsumerMetrics.
type ConsumerStats struct {
	Consumed     int64
	Processed    int64
	Failed       int64
	Retried      int64
	DeadLettered int64
	Lag          int64
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads a consumer group's topics and dispatches each message to
// the handler subscribed for its topic. Offsets are committed after the
// handler succeeds or the message is given up on.
type Consumer struct {
	reader     ReaderInterface
	config     ConsumerConfig
	logger     logging.Logger
	deadLetter publisher

	handlers map[string]MessageHandler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}

	metrics *ConsumerMetrics
}

// NewConsumer creates a consumer group reader. deadLetter may be nil, in
// which case exhausted messages are logged and dropped.
func NewConsumer(cfg ConsumerConfig, deadLetter *Producer, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	applyConsumerDefaults(&cfg)

	tlsConfig, mech, err := cfg.security().build()
	if err != nil {
		return nil, err
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    cfg.Topics,
		MaxWait:        cfg.MaxWait,
		CommitInterval: 0, // synchronous commits
		StartOffset:    kafka.FirstOffset,
		Dialer: &kafka.Dialer{
			Timeout:       10 * time.Second,
			DualStack:     true,
			TLS:           tlsConfig,
			SASLMechanism: mech,
		},
	}
	if cfg.StartAtLatest {
		readerCfg.StartOffset = kafka.LastOffset
	}

	var dl publisher
	if deadLetter != nil {
		dl = deadLetter
	}
	return newConsumerWithReader(kafka.NewReader(readerCfg), cfg, dl, logger), nil
}

func newConsumerWithReader(r ReaderInterface, cfg ConsumerConfig, dl publisher, logger logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	applyConsumerDefaults(&cfg)
	return &Consumer{
		reader:     r,
		config:     cfg,
		logger:     logger,
		deadLetter: dl,
		handlers:   make(map[string]MessageHandler),
		metrics:    &ConsumerMetrics{},
	}
}

func applyConsumerDefaults(cfg *ConsumerConfig) {
	if cfg.CommitTimeout == 0 {
		cfg.CommitTimeout = 5 * time.Second
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = time.Second
	}
	if cfg.Retry.RetryBackoff == 0 {
		cfg.Retry.RetryBackoff = time.Second
	}
	if cfg.Retry.MaxRetryBackoff == 0 {
		cfg.Retry.MaxRetryBackoff = 30 * time.Second
	}
}

// Subscribe registers handler for topic, replacing any earlier one.
func (c *Consumer) Subscribe(topic string, handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	c.logger.Info("subscribed to topic", logging.String("topic", topic))
}

// Start runs the consume loop in the background until ctx is done or Close
// is called.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.consumeLoop(ctx)

	c.logger.Info("kafka consumer started",
		logging.String("group", c.config.GroupID),
		logging.Any("topics", c.config.Topics))
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer close(c.done)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("failed to fetch message", logging.Err(err))
			select {
			case <-time.After(time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}

		c.metrics.MessagesConsumed.Add(1)
		if m.HighWaterMark > 0 {
			c.metrics.Lag.Store(m.HighWaterMark - m.Offset - 1)
		}

		c.mu.RLock()
		handler, ok := c.handlers[m.Topic]
		c.mu.RUnlock()

		if !ok {
			c.logger.Warn("no handler for topic", logging.String("topic", m.Topic))
		} else if c.process(ctx, fromKafkaMessage(m), handler) {
			c.metrics.MessagesProcessed.Add(1)
		} else {
			c.metrics.MessagesFailed.Add(1)
		}
		if ctx.Err() != nil {
			// interrupted mid-retry; leave the offset for redelivery
			return
		}
		c.commit(m)
	}
}

// commit uses its own timeout so a shutdown does not drop the final commit.
func (c *Consumer) commit(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.CommitTimeout)
	defer cancel()
	if err := c.reader.CommitMessages(ctx, m); err != nil {
		c.logger.Error("failed to commit offset",
			logging.String("topic", m.Topic),
			logging.Int64("offset", m.Offset),
			logging.Err(err))
	}
}

// process runs handler with retries and reports whether it succeeded.
func (c *Consumer) process(ctx context.Context, msg *Message, handler MessageHandler) bool {
	retry := c.config.Retry
	backoff := retry.RetryBackoff

	err := handler(ctx, msg)
	for attempt := 0; err != nil && attempt < retry.MaxRetries; attempt++ {
		if retry.Retryable != nil && !retry.Retryable(err) {
			break
		}
		c.metrics.MessagesRetried.Add(1)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		err = handler(ctx, msg)
		if backoff *= 2; backoff > retry.MaxRetryBackoff {
			backoff = retry.MaxRetryBackoff
		}
	}
	if err == nil {
		return true
	}

	c.logger.Error("message processing failed",
		logging.String("topic", msg.Topic),
		logging.Int("partition", msg.Partition),
		logging.Int64("offset", msg.Offset),
		logging.String("error_code", string(errors.GetCode(err))),
		logging.Err(err))
	c.sendToDeadLetter(ctx, msg, err)
	return false
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, msg *Message, cause error) {
	if c.deadLetter == nil || c.config.Retry.DeadLetterTopic == "" {
		return
	}
	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["original_topic"] = msg.Topic
	headers["error_message"] = cause.Error()

	dl := &Message{
		Topic:   c.config.Retry.DeadLetterTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
	if err := c.deadLetter.Publish(ctx, dl); err != nil {
		c.logger.Error("failed to publish to dead letter topic",
			logging.String("topic", dl.Topic), logging.Err(err))
		return
	}
	c.metrics.MessagesDeadLettered.Add(1)
}

func fromKafkaMessage(m kafka.Message) *Message {
	msg := &Message{
		Topic:     m.Topic,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Partition: m.Partition,
		Offset:    m.Offset,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// Stats returns a snapshot of the consumer counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Consumed:     c.metrics.MessagesConsumed.Load(),
		Processed:    c.metrics.MessagesProcessed.Load(),
		Failed:       c.metrics.MessagesFailed.Load(),
		Retried:      c.metrics.MessagesRetried.Load(),
		DeadLettered: c.metrics.MessagesDeadLettered.Load(),
		Lag:          c.metrics.Lag.Load(),
	}
}

// Close stops the loop, waits for the in-flight message and closes the
// reader. It is a no-op on a consumer that is not running.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	c.cancel()
	<-c.done

	err := c.reader.Close()
	c.logger.Info("kafka consumer closed",
		logging.Int64("consumed", c.metrics.MessagesConsumed.Load()),
		logging.Int64("failed", c.metrics.MessagesFailed.Load()))
	return err
}

func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "group id required")
	}
	if len(cfg.Topics) == 0 {
		return errors.New(errors.ErrCodeValidation, "at least one topic required")
	}
	if cfg.Retry.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max retries must be >= 0")
	}
	return nil
}
