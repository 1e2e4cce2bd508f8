package config_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simpol/internal/config"
	"github.com/turtacn/simpol/pkg/errors"
)

func validConfig() *config.Config {
	return config.NewDefaultConfig()
}

func requireInvalid(t *testing.T, cfg *config.Config, contains string) {
	t.Helper()
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
	assert.Contains(t, err.Error(), contains)
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Temperatures(t *testing.T) {
	t.Parallel()
	for _, temps := range [][]float64{nil, {0}, {-10}, {math.NaN()}, {298.15, math.Inf(1)}} {
		cfg := validConfig()
		cfg.Estimation.Temperatures = temps
		requireInvalid(t, cfg, "estimation.temperatures")
	}
}

func TestConfig_Validate_Concurrency(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Estimation.Concurrency = 0
	requireInvalid(t, cfg, "estimation.concurrency")
}

func TestConfig_Validate_OnError(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Estimation.OnError = "retry"
	requireInvalid(t, cfg, "estimation.on_error")

	cfg.Estimation.OnError = "abort"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_NegativeCacheTTL(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Estimation.CacheTTL = -time.Second
	requireInvalid(t, cfg, "cache_ttl")
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	t.Parallel()
	for _, port := range []int{-1, 0, 65536} {
		cfg := validConfig()
		cfg.Server.Port = port
		requireInvalid(t, cfg, "server.port")
	}
}

func TestConfig_Validate_NegativeRateLimit(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Server.RateLimitRPS = -1
	requireInvalid(t, cfg, "rate_limit")
}

func TestConfig_Validate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	requireInvalid(t, cfg, "log.level")
}

func TestConfig_Validate_InvalidLogFormat(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Log.Format = "xml"
	requireInvalid(t, cfg, "log.format")
}

func TestConfig_Validate_MetricsPath(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "metrics"
	requireInvalid(t, cfg, "metrics.path")

	cfg.Metrics.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_CacheNeedsRedis(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Estimation.CacheEnabled = true
	cfg.Redis.Addrs = nil
	requireInvalid(t, cfg, "redis.addrs")
}

func TestConfig_Validate_KafkaTopics(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Kafka.ResultTopic = cfg.Kafka.RequestTopic
	requireInvalid(t, cfg, "must differ")

	cfg = validConfig()
	cfg.Kafka.StartOffset = "middle"
	requireInvalid(t, cfg, "kafka.start_offset")

	cfg = validConfig()
	cfg.Kafka.DeadLetterTopic = cfg.Kafka.ResultTopic
	requireInvalid(t, cfg, "kafka.dead_letter_topic")

	cfg = validConfig()
	cfg.Kafka.MaxRetryBackoff = cfg.Kafka.RetryBackoff / 2
	requireInvalid(t, cfg, "kafka.retry_backoff")
}

func TestConfig_Validate_MinIOEndpoint(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.MinIO.Enabled = true
	cfg.MinIO.Endpoint = ""
	requireInvalid(t, cfg, "minio.endpoint")
}

func TestConfig_ValidateWorker(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	assert.NoError(t, cfg.ValidateWorker())

	cfg.Kafka.Brokers = nil
	assert.Error(t, cfg.ValidateWorker())

	cfg = validConfig()
	cfg.Kafka.GroupID = ""
	assert.Error(t, cfg.ValidateWorker())
}

//Personal.AI order the ending
