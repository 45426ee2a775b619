// Package config defines the configuration structures for claimtrack. No I/O
// or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	// CORSAllowedOrigins lists browser origins allowed to call the API.
	// Empty disables CORS headers.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// Address returns host:port.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters for the claim store.
type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"db_name"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	MigrationsPath   string        `mapstructure:"migrations_path"`
}

// RedisConfig holds the shared record cache parameters.
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	PoolSize  int           `mapstructure:"pool_size"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// CacheConfig holds the in-process record cache parameters.
type CacheConfig struct {
	LocalTTL        time.Duration `mapstructure:"local_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// KafkaConfig holds dashboard event publishing and record sync parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`

	// Consumed by the sync worker only.
	RecordsTopic    string `mapstructure:"records_topic"`
	DeadLetterTopic string `mapstructure:"dead_letter_topic"`
	ConsumerGroup   string `mapstructure:"consumer_group"`
}

// WorkerConfig holds the record sync worker parameters.
type WorkerConfig struct {
	HealthPort      int           `mapstructure:"health_port"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
}

// MinIOConfig holds the document bucket parameters.
type MinIOConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string `mapstructure:"format"` // "json" | "console"
	Output      string `mapstructure:"output"`
	Development bool   `mapstructure:"development"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// DashboardConfig holds the deadline rule.
type DashboardConfig struct {
	Timezone   string `mapstructure:"timezone"`
	CutoffHour int    `mapstructure:"cutoff_hour"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}
	if c.Redis.TTL <= 0 {
		return fmt.Errorf("config: redis.ttl must be positive")
	}
	if c.Cache.LocalTTL > c.Redis.TTL {
		return fmt.Errorf("config: cache.local_ttl %s exceeds redis.ttl %s", c.Cache.LocalTTL, c.Redis.TTL)
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required")
		}
		if c.Kafka.RecordsTopic == "" || c.Kafka.ConsumerGroup == "" {
			return fmt.Errorf("config: kafka.records_topic and kafka.consumer_group are required")
		}
	}

	if c.Worker.HealthPort < 1 || c.Worker.HealthPort > 65535 {
		return fmt.Errorf("config: worker.health_port %d is out of range [1, 65535]", c.Worker.HealthPort)
	}
	if c.Worker.MaxRetries < 0 {
		return fmt.Errorf("config: worker.max_retries must be >= 0")
	}

	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.endpoint and minio.bucket are required")
		}
		if c.MinIO.PresignExpiry <= 0 || c.MinIO.PresignExpiry > 7*24*time.Hour {
			return fmt.Errorf("config: minio.presign_expiry %s is out of range (0, 168h]", c.MinIO.PresignExpiry)
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Dashboard.CutoffHour < 0 || c.Dashboard.CutoffHour > 23 {
		return fmt.Errorf("config: dashboard.cutoff_hour %d is out of range [0, 23]", c.Dashboard.CutoffHour)
	}
	if _, err := time.LoadLocation(c.Dashboard.Timezone); err != nil {
		return fmt.Errorf("config: dashboard.timezone %q: %w", c.Dashboard.Timezone, err)
	}

	return nil
}
