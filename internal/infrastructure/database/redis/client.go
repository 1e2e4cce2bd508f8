// Package redis provides the Redis connection and the JSON result cache built
// on it.  Estimates are pure functions of their input, so cached entries never
// need invalidation beyond their TTL.
package redis

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
)

var (
	ErrClientClosed     = errors.New(errors.ErrCodeServiceUnavailable, "redis client is closed")
	ErrConnectionFailed = errors.New(errors.ErrCodeServiceUnavailable, "redis connection failed")
)

// RedisConfig holds the connection settings.  Addrs with more than one entry
// selects a cluster client.
type RedisConfig struct {
	Addrs        []string      `mapstructure:"addrs"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	TLSEnabled   bool          `mapstructure:"tls_enabled"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

func (cfg *RedisConfig) applyDefaults() {
	if len(cfg.Addrs) == 0 {
		cfg.Addrs = []string{"localhost:6379"}
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
}

// Client wraps a go-redis UniversalClient and refuses commands once closed.
type Client struct {
	rdb    redis.UniversalClient
	logger logging.Logger

	mu     sync.RWMutex
	closed bool
}

// NewClient connects and pings.  The ping is bounded by five seconds.
func NewClient(cfg RedisConfig, log logging.Logger) (*Client, error) {
	cfg.applyDefaults()
	opts := &redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	c := newClient(redis.NewUniversalClient(opts), log)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.rdb.Close()
		return nil, ErrConnectionFailed.WithCause(err)
	}
	c.logger.Info("redis client connected", logging.Any("addrs", cfg.Addrs))
	return c, nil
}

func newClient(rdb redis.UniversalClient, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{rdb: rdb, logger: log.Named("redis")}
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) Ping(ctx context.Context) error {
	if c.isClosed() {
		return ErrClientClosed
	}
	return c.rdb.Ping(ctx).Err()
}

// Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("failed to close redis client", logging.Err(err))
		return err
	}
	c.logger.Info("redis client closed")
	return nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c.isClosed() {
		return nil, ErrClientClosed
	}
	return c.rdb.Get(ctx, key).Bytes()
}

func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.isClosed() {
		return ErrClientClosed
	}
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	if c.isClosed() {
		return 0, ErrClientClosed
	}
	return c.rdb.Del(ctx, keys...).Result()
}

func (c *Client) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	if c.isClosed() {
		return nil, 0, ErrClientClosed
	}
	return c.rdb.Scan(ctx, cursor, match, count).Result()
}

//Personal.AI order the ending
