package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeServiceUnavailable, "producer closed")

// ProducerConfig holds the writer settings.
type ProducerConfig struct {
	Brokers         []string       `mapstructure:"brokers"`
	Acks            string         `mapstructure:"acks"` // none, one, all
	MaxAttempts     int            `mapstructure:"max_attempts"`
	BatchSize       int            `mapstructure:"batch_size"`
	BatchTimeout    time.Duration  `mapstructure:"batch_timeout"`
	MaxMessageBytes int            `mapstructure:"max_message_bytes"`
	Compression     string         `mapstructure:"compression"` // gzip, snappy, lz4, zstd
	WriteTimeout    time.Duration  `mapstructure:"write_timeout"`
	Security        SecurityConfig `mapstructure:"security"`
}

// ValidateProducerConfig reports the first invalid setting.
func ValidateProducerConfig(cfg ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.MaxAttempts < 0 {
		return errors.New(errors.ErrCodeValidation, "max_attempts must be >= 0")
	}
	return cfg.Security.validate()
}

// WriterInterface is the part of kafka.Writer the producer uses.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes messages.  It is safe for concurrent use.
type Producer struct {
	writer   WriterInterface
	maxBytes int
	logger   logging.Logger
	closed   atomic.Bool
	sent     atomic.Int64
	failed   atomic.Int64
}

// NewProducer builds a Producer over a kafka.Writer.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	mech, err := cfg.Security.mechanism()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to create SASL mechanism")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxAttempts,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: requiredAcks(cfg.Acks),
		Compression:  compression(cfg.Compression),
		Transport: &kafka.Transport{
			DialTimeout: 10 * time.Second,
			TLS:         cfg.Security.tlsConfig(),
			SASL:        mech,
		},
	}
	return newProducer(w, cfg.MaxMessageBytes, logger), nil
}

func newProducer(w WriterInterface, maxBytes int, logger logging.Logger) *Producer {
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{writer: w, maxBytes: maxBytes, logger: logger.Named("kafka.producer")}
}

func requiredAcks(s string) kafka.RequiredAcks {
	switch s {
	case "none":
		return kafka.RequireNone
	case "all":
		return kafka.RequireAll
	default:
		return kafka.RequireOne
	}
}

func compression(s string) kafka.Compression {
	switch s {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return 0
	}
}

// Publish writes one message synchronously.
func (p *Producer) Publish(ctx context.Context, msg *ProducerMessage) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if msg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "topic required")
	}
	if len(msg.Value) == 0 {
		return errors.New(errors.ErrCodeValidation, "message value required")
	}
	if len(msg.Value) > p.maxBytes {
		return errors.New(errors.ErrCodeValidation, "message too large").WithDetailf("bytes=%d max=%d", len(msg.Value), p.maxBytes)
	}

	if err := p.writer.WriteMessages(ctx, toKafkaMessage(msg)); err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeExternalService, "kafka publish failed")
	}
	p.sent.Add(1)
	p.logger.Debug("message published", logging.String("topic", msg.Topic), logging.Int("bytes", len(msg.Value)))
	return nil
}

// PublishJSON encodes v as JSON and publishes it under key.
func (p *Producer) PublishJSON(ctx context.Context, topic, key string, v interface{}, headers map[string]string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding message")
	}
	h := map[string]string{HeaderContentType: "application/json"}
	for k, val := range headers {
		h[k] = val
	}
	return p.Publish(ctx, &ProducerMessage{Topic: topic, Key: []byte(key), Value: data, Headers: h})
}

// Sent and Failed return the running publish counts.
func (p *Producer) Sent() int64   { return p.sent.Load() }
func (p *Producer) Failed() int64 { return p.failed.Load() }

// Close flushes and closes the writer.  It is idempotent.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed", logging.Int("sent", int(p.sent.Load())))
	return err
}

func toKafkaMessage(msg *ProducerMessage) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return kafka.Message{Topic: msg.Topic, Key: msg.Key, Value: msg.Value, Headers: headers, Time: ts}
}

//Personal.AI order the ending
