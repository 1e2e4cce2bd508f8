// Package bootstrap turns a loaded Config into the running dependencies shared
// by the simpol CLI, the API server and the stream worker.
package bootstrap

import (
	stderrors "errors"

	"github.com/turtacn/simpol/internal/application/estimation"
	"github.com/turtacn/simpol/internal/application/reporting"
	"github.com/turtacn/simpol/internal/config"
	"github.com/turtacn/simpol/internal/infrastructure/database/redis"
	"github.com/turtacn/simpol/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/simpol/internal/infrastructure/storage/minio"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

// Metric sources.
const (
	SourceCLI    = "cli"
	SourceHTTP   = "http"
	SourceStream = "stream"
)

// Runtime holds the process-wide dependencies.  Redis and MinIO are nil
// unless enabled in the configuration; Publisher is nil without MinIO.
type Runtime struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics
	Service   estimation.Service
	Publisher *reporting.Publisher
	Redis     *redis.Client
	MinIO     *minio.MinIOClient

	closers []func() error
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:       logging.Level(cfg.Level),
		Format:      cfg.Format,
		OutputPaths: cfg.OutputPaths,
	})
}

// New connects the configured backends and builds the estimation service.
// On failure every backend opened so far is closed again.
func New(cfg *config.Config, logger logging.Logger, source string) (_ *Runtime, err error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	rt := &Runtime{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = rt.Close()
		}
	}()

	if cfg.Metrics.Enabled {
		rt.Collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: source != SourceCLI,
			EnableGoMetrics:      source != SourceCLI,
		}, logger)
		if err != nil {
			return nil, err
		}
	} else {
		rt.Collector = prometheus.NewNopCollector()
	}
	rt.Metrics = prometheus.NewAppMetrics(rt.Collector)

	svcOpts := []estimation.ServiceOption{estimation.WithMetrics(rt.Metrics)}
	if cfg.Estimation.CacheEnabled {
		rt.Redis, err = redis.NewClient(RedisConfig(cfg.Redis), logger)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, rt.Redis.Close)
		cache := redis.NewRedisCache(rt.Redis, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Estimation.CacheTTL))
		svcOpts = append(svcOpts, estimation.WithCache(cache))
	}

	if cfg.MinIO.Enabled {
		rt.MinIO, err = minio.NewMinIOClient(MinIOConfig(cfg.MinIO), logger)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, rt.MinIO.Close)
		rt.Publisher = reporting.NewPublisher(minio.NewReportStore(rt.MinIO, logger), rt.Metrics, logger)
	}

	rt.Service = estimation.NewService(ServiceOptions(cfg.Estimation, source), logger, svcOpts...)
	logger.Debug("runtime ready",
		logging.String("source", source),
		logging.Bool("cache", rt.Redis != nil),
		logging.Bool("report_upload", rt.Publisher != nil),
		logging.Bool("metrics", cfg.Metrics.Enabled))
	return rt, nil
}

// Close releases the backends in reverse order of opening.  It is safe on a
// partially built or zero Runtime.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return stderrors.Join(errs...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Config translation
// ─────────────────────────────────────────────────────────────────────────────

// ServiceOptions maps the estimation section onto service options.
func ServiceOptions(cfg config.EstimationConfig, source string) estimation.Options {
	return estimation.Options{
		Temperatures: cfg.Temperatures,
		Concurrency:  cfg.Concurrency,
		OnError:      stypes.OnErrorPolicy(cfg.OnError),
		CacheTTL:     cfg.CacheTTL,
		Source:       source,
	}
}

func RedisConfig(cfg config.RedisConfig) redis.RedisConfig {
	return redis.RedisConfig{
		Addrs:       cfg.Addrs,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
		TLSEnabled:  cfg.TLSEnabled,
	}
}

func MinIOConfig(cfg config.MinIOConfig) minio.MinIOConfig {
	return minio.MinIOConfig{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		UseSSL:          cfg.UseSSL,
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
		Prefix:          cfg.Prefix,
		RetentionDays:   cfg.RetentionDays,
	}
}

func kafkaSecurity(cfg config.KafkaConfig) kafka.SecurityConfig {
	return kafka.SecurityConfig{
		SASLEnabled:   cfg.SASLMechanism != "",
		SASLMechanism: cfg.SASLMechanism,
		SASLUsername:  cfg.SASLUsername,
		SASLPassword:  cfg.SASLPassword,
		TLSEnabled:    cfg.TLSEnabled,
	}
}

// ConsumerConfig reads the request topic in the worker group.
func ConsumerConfig(cfg config.KafkaConfig) kafka.ConsumerConfig {
	return kafka.ConsumerConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.RequestTopic,
		StartOffset:    cfg.StartOffset,
		HandlerTimeout: cfg.HandlerTimeout,
		Security:       kafkaSecurity(cfg),
		Retry: kafka.RetryConfig{
			MaxRetries:      cfg.MaxRetries,
			RetryBackoff:    cfg.RetryBackoff,
			MaxRetryBackoff: cfg.MaxRetryBackoff,
			DeadLetterTopic: cfg.DeadLetterTopic,
		},
	}
}

func ProducerConfig(cfg config.KafkaConfig) kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Brokers:  cfg.Brokers,
		Acks:     "all",
		Security: kafkaSecurity(cfg),
	}
}

//Personal.AI order the ending
