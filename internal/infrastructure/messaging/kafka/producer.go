// Package kafka publishes claim dashboard events and consumes claim record
// updates with segmentio/kafka-go.
package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeServiceUnavailable, "producer closed")

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	Brokers          []string
	Acks             string // none, one (default), all
	MaxRetries       int
	BatchTimeout     time.Duration
	MaxMessageBytes  int
	CompressionCodec string
	WriteTimeout     time.Duration
	SASLEnabled      bool
	SASLMechanism    string
	SASLUsername     string
	SASLPassword     string
	TLSEnabled       bool
	TLSCAPath        string
}

// Message is one record to write. Topic is mandatory.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time

	// Partition and Offset are only set on consumed messages.
	Partition int
	Offset    int64
}

// ProducerMetrics counts producer outcomes since start.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer  WriterInterface
	config  ProducerConfig
	logger  logging.Logger
	closed  atomic.Bool
	metrics *ProducerMetrics
}

func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	applyProducerDefaults(&cfg)

	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: requiredAcks(cfg.Acks),
		Compression:  compression(cfg.CompressionCodec),
		Transport:    transport,
	}

	return newProducerWithWriter(writer, cfg, logger), nil
}

func newProducerWithWriter(w WriterInterface, cfg ProducerConfig, logger logging.Logger) *Producer {
	return &Producer{writer: w, config: cfg, logger: logger, metrics: &ProducerMetrics{}}
}

func applyProducerDefaults(cfg *ProducerConfig) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.MaxMessageBytes == 0 {
		cfg.MaxMessageBytes = 1024 * 1024
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
}

func newTransport(cfg ProducerConfig) (*kafka.Transport, error) {
	tlsConfig, mech, err := cfg.security().build()
	if err != nil {
		return nil, err
	}
	return &kafka.Transport{DialTimeout: 10 * time.Second, TLS: tlsConfig, SASL: mech}, nil
}

func (cfg ProducerConfig) security() security {
	return security{
		TLSEnabled:    cfg.TLSEnabled,
		TLSCAPath:     cfg.TLSCAPath,
		SASLEnabled:   cfg.SASLEnabled,
		SASLMechanism: cfg.SASLMechanism,
		SASLUsername:  cfg.SASLUsername,
		SASLPassword:  cfg.SASLPassword,
	}
}

// security is the TLS and SASL setup shared by producers and consumers.
type security struct {
	TLSEnabled    bool
	TLSCAPath     string
	SASLEnabled   bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

// build returns a nil tls.Config and mechanism for whatever is disabled.
func (s security) build() (*tls.Config, sasl.Mechanism, error) {
	var tlsConfig *tls.Config
	if s.TLSEnabled {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		if s.TLSCAPath != "" {
			caCert, err := os.ReadFile(s.TLSCAPath)
			if err != nil {
				return nil, nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to read kafka CA bundle")
			}
			pool := x509.NewCertPool()
			pool.AppendCertsFromPEM(caCert)
			tlsConfig.RootCAs = pool
		}
	}
	if !s.SASLEnabled {
		return tlsConfig, nil, nil
	}

	var (
		mech sasl.Mechanism
		err  error
	)
	switch s.SASLMechanism {
	case "PLAIN":
		mech = plain.Mechanism{Username: s.SASLUsername, Password: s.SASLPassword}
	case "SCRAM-SHA-256":
		mech, err = scram.Mechanism(scram.SHA256, s.SASLUsername, s.SASLPassword)
	case "SCRAM-SHA-512":
		mech, err = scram.Mechanism(scram.SHA512, s.SASLUsername, s.SASLPassword)
	default:
		return nil, nil, errors.New(errors.ErrCodeValidation, "unsupported SASL mechanism").WithDetail(s.SASLMechanism)
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create SASL mechanism")
	}
	return tlsConfig, mech, nil
}

func requiredAcks(acks string) kafka.RequiredAcks {
	switch acks {
	case "none":
		return kafka.RequireNone
	case "all":
		return kafka.RequireAll
	default:
		return kafka.RequireOne
	}
}

func compression(codec string) kafka.Compression {
	switch codec {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Compression(0)
	}
}

// Publish writes msg synchronously.
func (p *Producer) Publish(ctx context.Context, msg *Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if msg == nil || msg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "topic required")
	}
	if len(msg.Value) == 0 {
		return errors.New(errors.ErrCodeValidation, "value required")
	}
	if len(msg.Value) > p.config.MaxMessageBytes {
		return errors.New(errors.ErrCodeValidation, "message too large")
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, toKafkaMessage(msg)); err != nil {
		p.metrics.MessagesFailed.Add(1)
		return errors.Wrap(err, errors.ErrCodeExternalService, "publish failed").WithDetail("topic=" + msg.Topic)
	}

	p.metrics.MessagesSent.Add(1)
	p.metrics.BytesSent.Add(int64(len(msg.Value)))
	p.logger.Debug("message published",
		logging.String("topic", msg.Topic),
		logging.Duration("latency", time.Since(start)))
	return nil
}

// Stats returns sent and failed counts.
func (p *Producer) Stats() (sent, failed int64) {
	return p.metrics.MessagesSent.Load(), p.metrics.MessagesFailed.Load()
}

func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}

func toKafkaMessage(msg *Message) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return kafka.Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
		Time:    ts,
	}
}

func ValidateProducerConfig(cfg ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max retries must be >= 0")
	}
	return nil
}
