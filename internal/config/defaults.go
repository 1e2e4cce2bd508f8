package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultTemperature       = 298.15
	DefaultConcurrency       = 4
	DefaultOnError           = "skip"
	DefaultCacheTTL          = 24 * time.Hour
	DefaultServerHost        = "0.0.0.0"
	DefaultServerPort        = 8080
	DefaultMaxBodySize       = 4 << 20
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
	DefaultMetricsNamespace  = "simpol"
	DefaultMetricsPath       = "/metrics"
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisKeyPrefix    = "simpol:"
	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaGroupID      = "simpol-worker"
	DefaultKafkaRequestTopic = "simpol.estimate.request"
	DefaultKafkaResultTopic  = "simpol.estimate.result"
	DefaultKafkaDLQTopic     = "simpol.estimate.request.dlq"
	DefaultKafkaMaxRetries   = 3
	DefaultMinIOEndpoint     = "localhost:9000"
	DefaultMinIOBucket       = "simpol-reports"
	DefaultMinIOPrefix       = "reports/"
)

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default.  Fields
// already set are left unchanged so explicit configuration always wins.
// Booleans cannot be told apart from an explicit false and are not touched
// here; their defaults live in the loader.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Estimation ────────────────────────────────────────────────────────────
	if len(cfg.Estimation.Temperatures) == 0 {
		cfg.Estimation.Temperatures = []float64{DefaultTemperature}
	}
	if cfg.Estimation.Concurrency == 0 {
		cfg.Estimation.Concurrency = DefaultConcurrency
	}
	if cfg.Estimation.OnError == "" {
		cfg.Estimation.OnError = DefaultOnError
	}
	if cfg.Estimation.CacheTTL == 0 {
		cfg.Estimation.CacheTTL = DefaultCacheTTL
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 20
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if len(cfg.Redis.Addrs) == 0 {
		cfg.Redis.Addrs = []string{DefaultRedisAddr}
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.RequestTopic == "" {
		cfg.Kafka.RequestTopic = DefaultKafkaRequestTopic
	}
	if cfg.Kafka.ResultTopic == "" {
		cfg.Kafka.ResultTopic = DefaultKafkaResultTopic
	}
	if cfg.Kafka.StartOffset == "" {
		cfg.Kafka.StartOffset = "earliest"
	}
	if cfg.Kafka.HandlerTimeout == 0 {
		cfg.Kafka.HandlerTimeout = 30 * time.Second
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = DefaultKafkaMaxRetries
	}
	if cfg.Kafka.RetryBackoff == 0 {
		cfg.Kafka.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.Kafka.MaxRetryBackoff == 0 {
		cfg.Kafka.MaxRetryBackoff = 10 * time.Second
	}
	if cfg.Kafka.DeadLetterTopic == "" {
		cfg.Kafka.DeadLetterTopic = DefaultKafkaDLQTopic
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = "us-east-1"
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.Prefix == "" {
		cfg.MinIO.Prefix = DefaultMinIOPrefix
	}
	if cfg.MinIO.RetentionDays == 0 {
		cfg.MinIO.RetentionDays = 30
	}
}

//Personal.AI order the ending
