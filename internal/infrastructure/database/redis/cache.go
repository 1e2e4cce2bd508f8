package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "cache serialization failed")
)

// Cache is a JSON value cache with key prefixing and TTL jitter.
type Cache interface {
	// Get decodes the value stored under key into dest, or returns
	// ErrCacheMiss.
	Get(ctx context.Context, key string, dest interface{}) error
	// Set stores value under key.  A zero ttl means the default TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// GetOrLoad returns the cached value, or calls loader once per key across
	// concurrent callers and caches its result. hit reports whether dest was
	// read from Redis; callers sharing another caller's load see false.
	GetOrLoad(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) (hit bool, err error)
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
	Ping(ctx context.Context) error
}

type redisCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	jitter     float64
	group      singleflight.Group
}

type CacheOption func(*redisCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) { c.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

// WithJitter sets the relative TTL spread; 0.1 means ±10%.
func WithJitter(fraction float64) CacheOption {
	return func(c *redisCache) { c.jitter = fraction }
}

func NewRedisCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &redisCache{
		client:     client,
		logger:     log.Named("cache"),
		prefix:     "simpol:",
		defaultTTL: 24 * time.Hour,
		jitter:     0.1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) fullKey(key string) string { return c.prefix + key }

func (c *redisCache) ttl(ttl time.Duration) time.Duration {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if c.jitter == 0 {
		return ttl
	}
	return ttl + time.Duration(float64(ttl)*c.jitter*(rand.Float64()*2-1))
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.fullKey(key))
	if stderrors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache get failed")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if err := c.client.Set(ctx, c.fullKey(key), data, c.ttl(ttl)); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache set failed")
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	if _, err := c.client.Del(ctx, full...); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache delete failed")
	}
	return nil
}

func (c *redisCache) GetOrLoad(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) (bool, error) {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return true, nil
	}
	if err != ErrCacheMiss {
		c.logger.Warn("cache read failed, loading directly", logging.String("key", key), logging.Err(err))
	}

	raw, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, ErrSerializationFailed.WithCause(err)
		}
		if err := c.client.Set(ctx, c.fullKey(key), data, c.ttl(ttl)); err != nil {
			c.logger.Warn("cache write failed", logging.String("key", key), logging.Err(err))
		}
		return data, nil
	})
	if err != nil {
		return false, err
	}
	return false, json.Unmarshal(raw.([]byte), dest)
}

func (c *redisCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var deleted int64
	var cursor uint64
	match := c.fullKey(prefix) + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, 100)
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "cache scan failed")
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...)
			if err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "cache delete failed")
			}
			deleted += n
		}
		if cursor = next; cursor == 0 {
			return deleted, nil
		}
	}
}

func (c *redisCache) Ping(ctx context.Context) error { return c.client.Ping(ctx) }

//Personal.AI order the ending
