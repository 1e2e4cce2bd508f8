package kafka

import (
	"context"
	stderrors "errors"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
)

var (
	ErrConsumerClosed = errors.New(errors.ErrCodeServiceUnavailable, "consumer closed")
	ErrAlreadyStarted = errors.New(errors.ErrCodeBadRequest, "consumer already started")
	ErrNoHandler      = errors.New(errors.ErrCodeValidation, "no handler registered")
)

// RetryConfig controls redelivery of messages whose handler failed.  Retries
// wait RetryBackoff, doubling up to MaxRetryBackoff.  A message that still
// fails goes to DeadLetterTopic when one is set; a negative MaxRetries
// disables retries.
type RetryConfig struct {
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
	DeadLetterTopic string        `mapstructure:"dead_letter_topic"`
}

// ConsumerConfig holds the reader settings.
type ConsumerConfig struct {
	Brokers        []string       `mapstructure:"brokers"`
	GroupID        string         `mapstructure:"group_id"`
	Topic          string         `mapstructure:"topic"`
	StartOffset    string         `mapstructure:"start_offset"` // earliest, latest
	MinBytes       int            `mapstructure:"min_bytes"`
	MaxBytes       int            `mapstructure:"max_bytes"`
	MaxWait        time.Duration  `mapstructure:"max_wait"`
	HandlerTimeout time.Duration  `mapstructure:"handler_timeout"`
	Security       SecurityConfig `mapstructure:"security"`
	Retry          RetryConfig    `mapstructure:"retry"`
}

// ValidateConsumerConfig reports the first invalid setting.
func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "consumer group_id required")
	}
	if cfg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "consumer topic required")
	}
	switch cfg.StartOffset {
	case "", "earliest", "latest":
	default:
		return errors.New(errors.ErrCodeValidation, "start_offset must be earliest or latest")
	}
	if cfg.Retry.RetryBackoff < 0 || cfg.Retry.MaxRetryBackoff < 0 {
		return errors.New(errors.ErrCodeValidation, "retry backoff must not be negative")
	}
	if cfg.Retry.DeadLetterTopic != "" && cfg.Retry.DeadLetterTopic == cfg.Topic {
		return errors.New(errors.ErrCodeValidation, "dead_letter_topic must differ from topic")
	}
	return cfg.Security.validate()
}

// ReaderInterface is the part of kafka.Reader the consumer uses.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DeadLetterPublisher receives messages whose retries are exhausted.
// Producer satisfies it.
type DeadLetterPublisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// Consumer reads one topic in a consumer group and passes each message to a
// handler.  A failing handler is retried with backoff; once retries are
// exhausted the message is dead-lettered.  The offset is committed only after
// the message was handled or dead-lettered, so a message is never dropped
// silently.
type Consumer struct {
	reader         ReaderInterface
	handler        MessageHandler
	handlerTimeout time.Duration
	retry          RetryConfig
	deadLetter     DeadLetterPublisher
	logger         logging.Logger

	started      atomic.Bool
	closed       atomic.Bool
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	processed    atomic.Int64
	failed       atomic.Int64
	retried      atomic.Int64
	deadLettered atomic.Int64
}

// NewConsumer builds a Consumer over a kafka.Reader.
func NewConsumer(cfg ConsumerConfig, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = 500 * time.Millisecond
	}
	mech, err := cfg.Security.mechanism()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to create SASL mechanism")
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 3
	}
	if cfg.Retry.RetryBackoff == 0 {
		cfg.Retry.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.Retry.MaxRetryBackoff == 0 {
		cfg.Retry.MaxRetryBackoff = 10 * time.Second
	}
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == "latest" {
		startOffset = kafka.LastOffset
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: startOffset,
		Dialer: &kafka.Dialer{
			Timeout:       10 * time.Second,
			DualStack:     true,
			TLS:           cfg.Security.tlsConfig(),
			SASLMechanism: mech,
		},
	})
	return newConsumer(r, cfg.HandlerTimeout, cfg.Retry, logger), nil
}

func newConsumer(r ReaderInterface, handlerTimeout time.Duration, retry RetryConfig, logger logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if handlerTimeout <= 0 {
		handlerTimeout = 30 * time.Second
	}
	if retry.MaxRetries < 0 {
		retry.MaxRetries = 0
	}
	return &Consumer{
		reader:         r,
		handlerTimeout: handlerTimeout,
		retry:          retry,
		logger:         logger.Named("kafka.consumer"),
	}
}

// Subscribe sets the handler.  It must be called before Start or Run.
func (c *Consumer) Subscribe(h MessageHandler) {
	c.handler = h
}

// SetDeadLetterPublisher enables dead-lettering to the configured
// DeadLetterTopic.  It must be called before Start or Run.
func (c *Consumer) SetDeadLetterPublisher(p DeadLetterPublisher) {
	c.deadLetter = p
}

// Start runs the consume loop in a goroutine until Close.
func (c *Consumer) Start(ctx context.Context) error {
	if c.closed.Load() {
		return ErrConsumerClosed
	}
	if c.handler == nil {
		return ErrNoHandler
	}
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.loop(ctx); err != nil {
			c.logger.Error("consume loop stopped", logging.Err(err))
		}
	}()
	return nil
}

// Run consumes in the calling goroutine until ctx is cancelled or the reader
// fails.  Cancellation returns nil.
func (c *Consumer) Run(ctx context.Context) error {
	if c.closed.Load() {
		return ErrConsumerClosed
	}
	if c.handler == nil {
		return ErrNoHandler
	}
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	return c.loop(ctx)
}

func (c *Consumer) loop(ctx context.Context) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeExternalService, "kafka fetch failed")
		}
		if err := c.process(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("commit failed",
				logging.String("topic", m.Topic),
				logging.Int("partition", m.Partition),
				logging.Any("offset", m.Offset),
				logging.Err(err))
		}
	}
}

// process handles m with retries.  A nil return means m may be committed:
// it was handled, dead-lettered, or dropped with no dead-letter topic
// configured.  An error means m must stay uncommitted.
func (c *Consumer) process(ctx context.Context, m kafka.Message) error {
	msg := fromKafkaMessage(m)
	err := c.attempt(ctx, msg)
	backoff := c.retry.RetryBackoff
	for i := 0; err != nil && i < c.retry.MaxRetries; i++ {
		c.retried.Add(1)
		c.logger.Warn("message handler failed, retrying",
			logging.String("topic", msg.Topic),
			logging.Any("offset", msg.Offset),
			logging.Int("attempt", i+1),
			logging.Err(err))
		if backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if c.retry.MaxRetryBackoff > 0 && backoff > c.retry.MaxRetryBackoff {
				backoff = c.retry.MaxRetryBackoff
			}
		}
		err = c.attempt(ctx, msg)
	}
	if err == nil {
		c.processed.Add(1)
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	c.failed.Add(1)
	log := c.logger.With(
		logging.String("topic", msg.Topic),
		logging.Any("offset", msg.Offset),
		logging.Err(err))
	if c.deadLetter == nil || c.retry.DeadLetterTopic == "" {
		log.Error("message handler failed, message dropped")
		return nil
	}
	if dlErr := c.deadLetter.Publish(ctx, deadLetterMessage(c.retry.DeadLetterTopic, msg, err)); dlErr != nil {
		log.Error("dead-letter publish failed", logging.String("dead_letter_error", dlErr.Error()))
		return errors.Wrap(dlErr, errors.ErrCodeExternalService, "dead-letter publish failed").
			WithDetailf("topic=%s partition=%d offset=%d", msg.Topic, msg.Partition, msg.Offset)
	}
	c.deadLettered.Add(1)
	log.Warn("message dead-lettered", logging.String("dead_letter_topic", c.retry.DeadLetterTopic))
	return nil
}

func (c *Consumer) attempt(ctx context.Context, msg *Message) error {
	hctx, cancel := context.WithTimeout(ctx, c.handlerTimeout)
	defer cancel()
	return c.safeHandle(hctx, msg)
}

// deadLetterMessage copies msg for the dead-letter topic, recording where it
// came from and why it failed.
func deadLetterMessage(topic string, msg *Message, cause error) *ProducerMessage {
	headers := make(map[string]string, len(msg.Headers)+4)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderOriginalTopic] = msg.Topic
	headers[HeaderOriginalPartition] = strconv.Itoa(msg.Partition)
	headers[HeaderOriginalOffset] = strconv.FormatInt(msg.Offset, 10)
	headers[HeaderError] = cause.Error()
	return &ProducerMessage{Topic: topic, Key: msg.Key, Value: msg.Value, Headers: headers}
}

func (c *Consumer) safeHandle(ctx context.Context, msg *Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodeInternal, "handler panic: %v", r)
		}
	}()
	return c.handler(ctx, msg)
}

// Processed and Failed return the running handler counts.  Failed counts
// messages whose retries were exhausted.
func (c *Consumer) Processed() int64    { return c.processed.Load() }
func (c *Consumer) Failed() int64       { return c.failed.Load() }
func (c *Consumer) Retried() int64      { return c.retried.Load() }
func (c *Consumer) DeadLettered() int64 { return c.deadLettered.Load() }

// Close stops the loop started by Start and closes the reader.  It is
// idempotent.
func (c *Consumer) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	err := c.reader.Close()
	c.logger.Info("kafka consumer closed",
		logging.Int("processed", int(c.processed.Load())),
		logging.Int("failed", int(c.failed.Load())),
		logging.Int("dead_lettered", int(c.deadLettered.Load())))
	return err
}

func fromKafkaMessage(m kafka.Message) *Message {
	headers := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Headers:   headers,
		Timestamp: m.Time,
	}
}

//Personal.AI order the ending
