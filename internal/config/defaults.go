package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8080
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 15 * time.Second
	DefaultServerShutdownTimeout = 10 * time.Second
	DefaultServerMaxBodySize     = 1 << 20

	DefaultDBHost           = "localhost"
	DefaultDBPort           = 5432
	DefaultDBName           = "claimtrack"
	DefaultDBSSLMode        = "disable"
	DefaultDBMaxOpenConns   = 25
	DefaultDBMigrationsPath = "migrations"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "claimtrack:"
	DefaultRedisTTL       = 5 * time.Minute

	DefaultCacheLocalTTL        = 30 * time.Second
	DefaultCacheCleanupInterval = time.Minute

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaTopic        = "claim.dashboard.viewed"
	DefaultKafkaBatchTimeout = 100 * time.Millisecond
	DefaultKafkaMaxRetries   = 3
	DefaultKafkaRecordsTopic = "claim.record.updated"
	DefaultKafkaDeadLetter   = "claim.record.updated.dlq"
	DefaultKafkaGroup        = "claimtrack-recordsync"

	DefaultWorkerHealthPort      = 8081
	DefaultWorkerMaxRetries      = 3
	DefaultWorkerRetryBackoff    = time.Second
	DefaultWorkerMaxRetryBackoff = 30 * time.Second

	DefaultMinIOEndpoint      = "localhost:9000"
	DefaultMinIOBucket        = "claim-documents"
	DefaultMinIOPresignExpiry = 15 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "stdout"

	DefaultMetricsNamespace = "claimtrack"
	DefaultMetricsPath      = "/metrics"

	DefaultDashboardTimezone   = "Europe/London"
	DefaultDashboardCutoffHour = 16
)

// ApplyDefaults fills every zero-value field in cfg with its default. Fields
// already set are left unchanged so explicit configuration always wins.
// A cutoff hour of 0 counts as unset.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDBSSLMode
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDBMaxOpenConns
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = DefaultDBMigrationsPath
	}

	// ── Redis / cache ─────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = DefaultRedisTTL
	}
	if cfg.Cache.LocalTTL == 0 {
		cfg.Cache.LocalTTL = DefaultCacheLocalTTL
	}
	if cfg.Cache.CleanupInterval == 0 {
		cfg.Cache.CleanupInterval = DefaultCacheCleanupInterval
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = DefaultKafkaBatchTimeout
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = DefaultKafkaMaxRetries
	}
	if cfg.Kafka.RecordsTopic == "" {
		cfg.Kafka.RecordsTopic = DefaultKafkaRecordsTopic
	}
	if cfg.Kafka.DeadLetterTopic == "" {
		cfg.Kafka.DeadLetterTopic = DefaultKafkaDeadLetter
	}
	if cfg.Kafka.ConsumerGroup == "" {
		cfg.Kafka.ConsumerGroup = DefaultKafkaGroup
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.HealthPort == 0 {
		cfg.Worker.HealthPort = DefaultWorkerHealthPort
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = DefaultWorkerMaxRetries
	}
	if cfg.Worker.RetryBackoff == 0 {
		cfg.Worker.RetryBackoff = DefaultWorkerRetryBackoff
	}
	if cfg.Worker.MaxRetryBackoff == 0 {
		cfg.Worker.MaxRetryBackoff = DefaultWorkerMaxRetryBackoff
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = DefaultMinIOPresignExpiry
	}

	// ── Log / metrics ─────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Dashboard ─────────────────────────────────────────────────────────────
	if cfg.Dashboard.Timezone == "" {
		cfg.Dashboard.Timezone = DefaultDashboardTimezone
	}
	if cfg.Dashboard.CutoffHour == 0 {
		cfg.Dashboard.CutoffHour = DefaultDashboardCutoffHour
	}
}
