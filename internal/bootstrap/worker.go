package bootstrap

import (
	"context"
	"net/http"

	"github.com/turtacn/claimtrack/internal/application/recordsync"
	"github.com/turtacn/claimtrack/internal/config"
	"github.com/turtacn/claimtrack/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/prometheus"
	httpapi "github.com/turtacn/claimtrack/internal/interfaces/http"
	"github.com/turtacn/claimtrack/internal/interfaces/http/middleware"
	"github.com/turtacn/claimtrack/pkg/errors"
)

// RecordConsumer is the part of kafka.Consumer the worker drives.
type RecordConsumer interface {
	Subscribe(topic string, handler kafka.MessageHandler)
	Start(ctx context.Context) error
	Close() error
}

// Worker applies claim record updates from kafka to the claim store and
// serves health and metrics on the worker port.
type Worker struct {
	Config  *config.Config
	Sync    *recordsync.Service
	Metrics *prometheus.AppMetrics
	Handler http.Handler
	Server  *httpapi.Server

	consumer RecordConsumer
	infra    *Infra
	logger   logging.Logger
}

// NewWorker opens the infrastructure and a consumer group reader for the
// records topic. Kafka must be enabled.
func NewWorker(ctx context.Context, cfg *config.Config, log logging.Logger, version string) (*Worker, error) {
	if !cfg.Kafka.Enabled {
		return nil, errors.InvalidParam("kafka must be enabled to run the sync worker")
	}
	in, err := OpenInfra(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	ensureTopics(ctx, cfg.Kafka.Brokers, kafka.RecordSyncTopics(cfg.Kafka.RecordsTopic, cfg.Kafka.DeadLetterTopic), log)

	consumer, err := kafka.NewConsumer(ConsumerConfig(cfg), in.Producer, log.Named("kafka_consumer"))
	if err != nil {
		_ = in.Close()
		return nil, err
	}

	w, err := AssembleWorker(cfg, in, consumer, log, version)
	if err != nil {
		_ = in.Close()
		return nil, err
	}
	return w, nil
}

// ConsumerConfig maps the kafka and worker sections onto the consumer
// settings. Records that can never apply skip the retries.
func ConsumerConfig(cfg *config.Config) kafka.ConsumerConfig {
	return kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.ConsumerGroup,
		Topics:  []string{cfg.Kafka.RecordsTopic},
		Retry: kafka.RetryConfig{
			MaxRetries:      cfg.Worker.MaxRetries,
			RetryBackoff:    cfg.Worker.RetryBackoff,
			MaxRetryBackoff: cfg.Worker.MaxRetryBackoff,
			DeadLetterTopic: cfg.Kafka.DeadLetterTopic,
			Retryable:       recordsync.Retryable,
		},
	}
}

// AssembleWorker wires the sync service and the health server over already
// opened infrastructure and consumer.
func AssembleWorker(cfg *config.Config, in *Infra, consumer RecordConsumer, log logging.Logger, version string) (*Worker, error) {
	if in == nil || in.DB == nil {
		return nil, errors.InvalidParam("database connection is required")
	}
	if consumer == nil {
		return nil, errors.InvalidParam("record consumer is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	metrics, metricsHandler, err := newMetrics(cfg.Metrics, log)
	if err != nil {
		return nil, err
	}

	w := &Worker{Config: cfg, Metrics: metrics, consumer: consumer, infra: in, logger: log.Named("worker")}

	var recorder recordsync.MetricsRecorder
	if metrics != nil {
		recorder = metrics
	}
	w.Sync = recordsync.NewService(claimRepository(cfg, in, metrics, log), recorder, log)
	consumer.Subscribe(cfg.Kafka.RecordsTopic, kafka.RecordUpdateHandler(w.Sync))

	rc := httpapi.RouterConfig{
		HealthHandler:  healthHandler(in, metrics, version),
		Logging:        middleware.DefaultLoggingConfig(),
		Logger:         log.Named("http"),
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
	}
	serverCfg := cfg.Server
	serverCfg.Port = cfg.Worker.HealthPort
	w.Handler = httpapi.NewRouter(rc)
	w.Server = httpapi.NewServer(serverCfg, w.Handler, log)
	return w, nil
}

// Run consumes and serves until ctx is cancelled or either fails. The
// consumer is closed first so the in-flight record is committed before the
// infrastructure goes away.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.consumer.Start(ctx); err != nil {
		_ = w.infra.Close()
		return err
	}
	w.logger.Info("sync worker started",
		logging.String("topic", w.Config.Kafka.RecordsTopic),
		logging.String("group", w.Config.Kafka.ConsumerGroup))

	errCh := make(chan error, 1)
	go func() { errCh <- w.Server.Start() }()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	if err := w.consumer.Close(); err != nil {
		w.logger.Warn("failed to close consumer", logging.Err(err))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := w.Server.Shutdown(shutdownCtx); err != nil {
		w.logger.Error("graceful shutdown failed", logging.Err(err))
	}
	if err := w.infra.Close(); err != nil {
		w.logger.Warn("failed to release infrastructure", logging.Err(err))
	}
	return serveErr
}
