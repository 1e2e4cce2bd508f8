// Package config defines the configuration of the simpol CLI, API server and
// stream worker.  No I/O lives in this file, only data types and validation.
package config

import (
	"math"
	"time"

	"github.com/turtacn/simpol/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// EstimationConfig holds the batch driver settings.
type EstimationConfig struct {
	Temperatures []float64     `mapstructure:"temperatures"` // kelvin
	Concurrency  int           `mapstructure:"concurrency"`
	OnError      string        `mapstructure:"on_error"` // "skip" | "abort"
	CacheEnabled bool          `mapstructure:"cache_enabled"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"` // 0 disables
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// RedisConfig holds result-cache connection parameters.
type RedisConfig struct {
	Addrs       []string      `mapstructure:"addrs"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
	TLSEnabled  bool          `mapstructure:"tls_enabled"`
}

// KafkaConfig holds estimation stream parameters.
type KafkaConfig struct {
	Brokers        []string      `mapstructure:"brokers"`
	GroupID        string        `mapstructure:"group_id"`
	RequestTopic   string        `mapstructure:"request_topic"`
	ResultTopic    string        `mapstructure:"result_topic"`
	StartOffset    string        `mapstructure:"start_offset"` // "earliest" | "latest"
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
	SASLMechanism  string        `mapstructure:"sasl_mechanism"`
	SASLUsername   string        `mapstructure:"sasl_username"`
	SASLPassword   string        `mapstructure:"sasl_password"`
	TLSEnabled     bool          `mapstructure:"tls_enabled"`

	// Failed requests are retried MaxRetries times (negative disables) and
	// then published to DeadLetterTopic.
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
	DeadLetterTopic string        `mapstructure:"dead_letter_topic"`
}

// MinIOConfig holds report object-storage parameters.
type MinIOConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	RetentionDays   int    `mapstructure:"retention_days"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration.  Redis is used only when
// estimation.cache_enabled is set; Kafka only by the worker; MinIO only when
// enabled.
type Config struct {
	Estimation EstimationConfig `mapstructure:"estimation"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

func invalid(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrCodeValidation, "config: "+format, args...)
}

// Validate performs semantic validation of a defaulted Config and returns the
// first problem found.
func (c *Config) Validate() error {
	// Estimation
	if len(c.Estimation.Temperatures) == 0 {
		return invalid("estimation.temperatures must not be empty")
	}
	for _, t := range c.Estimation.Temperatures {
		if math.IsNaN(t) || math.IsInf(t, 0) || t <= 0 {
			return invalid("estimation.temperatures contains %v; temperatures are positive kelvin", t)
		}
	}
	if c.Estimation.Concurrency < 1 {
		return invalid("estimation.concurrency must be ≥ 1, got %d", c.Estimation.Concurrency)
	}
	switch c.Estimation.OnError {
	case "skip", "abort":
	default:
		return invalid("estimation.on_error %q is invalid; expected skip|abort", c.Estimation.OnError)
	}
	if c.Estimation.CacheTTL < 0 {
		return invalid("estimation.cache_ttl must not be negative")
	}

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.MaxBodySize < 1 {
		return invalid("server.max_body_size must be ≥ 1")
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		return invalid("server.rate_limit_rps and server.rate_limit_burst must not be negative")
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return invalid("log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Metrics
	if c.Metrics.Enabled && (c.Metrics.Path == "" || c.Metrics.Path[0] != '/') {
		return invalid("metrics.path %q must start with /", c.Metrics.Path)
	}

	// Redis
	if c.Estimation.CacheEnabled && len(c.Redis.Addrs) == 0 {
		return invalid("redis.addrs is required when estimation.cache_enabled is set")
	}
	if c.Redis.DB < 0 {
		return invalid("redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Kafka
	switch c.Kafka.StartOffset {
	case "earliest", "latest":
	default:
		return invalid("kafka.start_offset %q is invalid; expected earliest|latest", c.Kafka.StartOffset)
	}
	if c.Kafka.RequestTopic == c.Kafka.ResultTopic {
		return invalid("kafka.request_topic and kafka.result_topic must differ")
	}
	if c.Kafka.DeadLetterTopic == c.Kafka.RequestTopic || c.Kafka.DeadLetterTopic == c.Kafka.ResultTopic {
		return invalid("kafka.dead_letter_topic must differ from the request and result topics")
	}
	if c.Kafka.RetryBackoff < 0 || c.Kafka.MaxRetryBackoff < c.Kafka.RetryBackoff {
		return invalid("kafka.retry_backoff must be >= 0 and <= kafka.max_retry_backoff")
	}

	// MinIO
	if c.MinIO.Enabled && c.MinIO.Endpoint == "" {
		return invalid("minio.endpoint is required when minio.enabled is set")
	}

	return nil
}

// ValidateWorker checks the settings only the stream worker needs.
func (c *Config) ValidateWorker() error {
	if len(c.Kafka.Brokers) == 0 {
		return invalid("kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return invalid("kafka.group_id is required")
	}
	return nil
}

//Personal.AI order the ending
