// Package bootstrap builds a running claimtrack API from configuration. It
// is shared by the apiserver binary and the CLI serve command.
package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/turtacn/claimtrack/internal/application/dashboard"
	"github.com/turtacn/claimtrack/internal/config"
	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/infrastructure/cache"
	"github.com/turtacn/claimtrack/internal/infrastructure/database/postgres"
	"github.com/turtacn/claimtrack/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/claimtrack/internal/infrastructure/database/redis"
	"github.com/turtacn/claimtrack/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/claimtrack/internal/infrastructure/storage/minio"
	httpapi "github.com/turtacn/claimtrack/internal/interfaces/http"
	"github.com/turtacn/claimtrack/internal/interfaces/http/handlers"
	"github.com/turtacn/claimtrack/internal/interfaces/http/middleware"
	"github.com/turtacn/claimtrack/pkg/errors"
)

// Infra is the set of opened backing services. Only DB is required.
type Infra struct {
	DB        *postgres.Connection
	Redis     *redis.Client
	Producer  *kafka.Producer
	Documents *minio.MinIOClient
}

// Close releases every opened service. It is safe on a partial Infra.
func (in *Infra) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if in.Producer != nil {
		keep(in.Producer.Close())
	}
	if in.Redis != nil {
		keep(in.Redis.Close())
	}
	if in.DB != nil {
		keep(in.DB.Close())
	}
	return first
}

// App is a fully wired API.
type App struct {
	Config  *config.Config
	Service dashboard.Service
	Metrics *prometheus.AppMetrics
	Handler http.Handler
	Server  *httpapi.Server

	infra  *Infra
	logger logging.Logger
}

// PostgresConfig maps the database section onto the connection settings.
func PostgresConfig(c config.DatabaseConfig) postgres.PostgresConfig {
	return postgres.PostgresConfig{
		Host:             c.Host,
		Port:             c.Port,
		Database:         c.DBName,
		Username:         c.User,
		Password:         c.Password,
		SSLMode:          c.SSLMode,
		MaxOpenConns:     c.MaxOpenConns,
		MaxIdleConns:     c.MaxIdleConns,
		ConnMaxLifetime:  c.ConnMaxLifetime,
		StatementTimeout: c.StatementTimeout,
	}
}

// NewLogger builds the process logger from the log section.
func NewLogger(c config.LogConfig) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:       c.Level,
		Format:      c.Format,
		OutputPaths: []string{c.Output},
		Development: c.Development,
	})
}

// DeadlineEvaluator builds the deadline rule from the dashboard section.
func DeadlineEvaluator(c config.DashboardConfig) (claim.DeadlineEvaluator, error) {
	return claim.NewDeadlineEvaluatorForZone(c.Timezone, c.CutoffHour)
}

// OpenInfra connects to postgres and redis, and to kafka and minio when
// enabled. Whatever was opened is closed again on failure.
func OpenInfra(ctx context.Context, cfg *config.Config, log logging.Logger) (*Infra, error) {
	in := &Infra{}

	conn, err := postgres.NewConnection(PostgresConfig(cfg.Database), log.Named("postgres"))
	if err != nil {
		return nil, err
	}
	in.DB = conn

	rc, err := redis.NewClient(&redis.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}, log.Named("redis"))
	if err != nil {
		_ = in.Close()
		return nil, err
	}
	in.Redis = rc

	if cfg.Kafka.Enabled {
		p, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}, log.Named("kafka"))
		if err != nil {
			_ = in.Close()
			return nil, err
		}
		in.Producer = p
		ensureTopics(ctx, cfg.Kafka.Brokers, kafka.DefaultTopics(cfg.Kafka.Topic), log)
	}

	if cfg.MinIO.Enabled {
		mc, err := minio.NewMinIOClient(&minio.MinIOConfig{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKey,
			SecretAccessKey: cfg.MinIO.SecretKey,
			UseSSL:          cfg.MinIO.UseSSL,
			Bucket:          cfg.MinIO.Bucket,
			PresignExpiry:   cfg.MinIO.PresignExpiry,
		}, log.Named("minio"))
		if err != nil {
			_ = in.Close()
			return nil, err
		}
		in.Documents = mc
	}
	return in, nil
}

// ensureTopics creates the topics the broker lacks. Brokers with
// auto-creation still work when this fails, so failure is only logged.
func ensureTopics(ctx context.Context, brokers []string, topics []kafka.TopicConfig, log logging.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tm, err := kafka.NewTopicManager(ctx, brokers, log)
	if err != nil {
		log.Warn("kafka topic check skipped", logging.Err(err))
		return
	}
	defer tm.Close()
	if err := tm.EnsureTopics(ctx, topics...); err != nil {
		log.Warn("kafka topic creation failed", logging.Err(err))
	}
}

// Assemble wires the dashboard service, cache, metrics and HTTP surface over
// already opened infrastructure.
func Assemble(cfg *config.Config, in *Infra, log logging.Logger, version string) (*App, error) {
	if in == nil || in.DB == nil {
		return nil, errors.InvalidParam("database connection is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	deadlines, err := DeadlineEvaluator(cfg.Dashboard)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, infra: in, logger: log}

	metrics, metricsHandler, err := newMetrics(cfg.Metrics, log)
	if err != nil {
		return nil, err
	}
	app.Metrics = metrics

	repo := claimRepository(cfg, in, app.Metrics, log)

	svcOpts := []dashboard.Option{}
	if app.Metrics != nil {
		svcOpts = append(svcOpts, dashboard.WithMetrics(app.Metrics))
	}
	if in.Producer != nil {
		svcOpts = append(svcOpts, dashboard.WithPublisher(kafka.NewDashboardPublisher(in.Producer, cfg.Kafka.Topic, "claimtrack-api")))
	}
	app.Service = dashboard.NewService(repo, deadlines, log, svcOpts...)

	var linker handlers.DocumentLinker
	if in.Documents != nil {
		linker = minio.NewDocumentLinker(in.Documents, log.Named("documents"))
	}

	rc := httpapi.RouterConfig{
		DashboardHandler: handlers.NewDashboardHandler(app.Service, linker, cfg.Server.MaxBodySize, log),
		HealthHandler:    healthHandler(in, app.Metrics, version),
		CORSOrigins:      cfg.Server.CORSAllowedOrigins,
		Logging:          middleware.DefaultLoggingConfig(),
		Logger:           log.Named("http"),
		MetricsHandler:   metricsHandler,
		MetricsPath:      cfg.Metrics.Path,
	}
	if app.Metrics != nil {
		rc.HTTPMetrics = app.Metrics
	}
	app.Handler = httpapi.NewRouter(rc)
	app.Server = httpapi.NewServer(cfg.Server, app.Handler, log)
	return app, nil
}

// newMetrics returns nil metrics and handler when metrics are disabled.
func newMetrics(c config.MetricsConfig, log logging.Logger) (*prometheus.AppMetrics, http.Handler, error) {
	if !c.Enabled {
		return nil, nil, nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            c.Namespace,
		EnableGoMetrics:      true,
		EnableProcessMetrics: true,
	}, log.Named("metrics"))
	if err != nil {
		return nil, nil, err
	}
	return prometheus.NewAppMetrics(collector), collector.Handler(), nil
}

// healthHandler checks every opened backing service.
func healthHandler(in *Infra, m *prometheus.AppMetrics, version string) *handlers.HealthHandler {
	checkers := []handlers.HealthChecker{
		handlers.CheckFunc{Component: "postgres", Fn: in.DB.HealthCheck},
	}
	if in.Redis != nil {
		checkers = append(checkers, handlers.CheckFunc{Component: "redis", Fn: in.Redis.Ping})
	}
	if in.Documents != nil {
		checkers = append(checkers, handlers.CheckFunc{Component: "minio", Fn: in.Documents.HealthCheck})
	}
	var observe handlers.HealthObserver
	if m != nil {
		observe = m.SetHealth
	}
	return handlers.NewHealthHandler(version, observe, checkers...)
}

// claimRepository layers the in-process and redis caches over postgres.
func claimRepository(cfg *config.Config, in *Infra, m *prometheus.AppMetrics, log logging.Logger) claim.Repository {
	var shared cache.Store
	if in.Redis != nil {
		shared = cache.NewRedisStore(redis.NewRedisCache(in.Redis, log.Named("redis_cache"),
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.TTL)))
	}
	local := cache.NewMemoryCache(cfg.Cache.LocalTTL, cfg.Cache.CleanupInterval)
	layered := cache.NewLayeredCache(local, shared, cfg.Cache.LocalTTL, log)

	var opts []cache.RepositoryOption
	if m != nil {
		opts = append(opts, cache.WithAccessRecorder(m))
	}
	return cache.NewCachedRepository(repositories.NewClaimRepository(in.DB, log.Named("claim_repo")), layered, cfg.Redis.TTL, log, opts...)
}

// New opens the infrastructure named by cfg and assembles the API over it.
func New(ctx context.Context, cfg *config.Config, log logging.Logger, version string) (*App, error) {
	in, err := OpenInfra(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	app, err := Assemble(cfg, in, log, version)
	if err != nil {
		_ = in.Close()
		return nil, err
	}
	return app, nil
}

// Run serves until ctx is cancelled or the server fails, then shuts down
// within the configured timeout and releases the infrastructure.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.Server.Start() }()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("graceful shutdown failed", logging.Err(err))
	}
	if err := a.Close(); err != nil {
		a.logger.Warn("failed to release infrastructure", logging.Err(err))
	}
	return serveErr
}

// Close releases the infrastructure.
func (a *App) Close() error {
	return a.infra.Close()
}
