// Package kafka carries estimation requests and results over Kafka topics
// with segmentio/kafka-go.  The reader and writer are hidden behind small
// interfaces so the consume loop and publishing can be tested without a
// broker.
package kafka

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/turtacn/simpol/pkg/errors"
)

// Default topic names.
const (
	TopicEstimateRequest = "simpol.estimate.request"
	TopicEstimateResult  = "simpol.estimate.result"
	TopicEstimateDLQ     = "simpol.estimate.request.dlq"
)

// Header keys set on published messages.
const (
	HeaderContentType = "content-type"
	HeaderRequestID   = "request-id"
	HeaderSource      = "source"

	// Set on dead-lettered messages.
	HeaderOriginalTopic     = "original-topic"
	HeaderOriginalPartition = "original-partition"
	HeaderOriginalOffset    = "original-offset"
	HeaderError             = "error"
)

// Message is a consumed record.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// ProducerMessage is a record to publish.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// MessageHandler processes one consumed message.  A returned error makes the
// consumer retry the message and finally dead-letter it.
type MessageHandler func(ctx context.Context, msg *Message) error

// SecurityConfig is shared by producers and consumers.
type SecurityConfig struct {
	SASLEnabled   bool   `mapstructure:"sasl_enabled"`
	SASLMechanism string `mapstructure:"sasl_mechanism"` // PLAIN, SCRAM-SHA-256, SCRAM-SHA-512
	SASLUsername  string `mapstructure:"sasl_username"`
	SASLPassword  string `mapstructure:"sasl_password"`
	TLSEnabled    bool   `mapstructure:"tls_enabled"`
}

func (s SecurityConfig) validate() error {
	if !s.SASLEnabled {
		return nil
	}
	switch s.SASLMechanism {
	case "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512":
	default:
		return errors.New(errors.ErrCodeValidation, "unsupported SASL mechanism").WithDetail(s.SASLMechanism)
	}
	if s.SASLUsername == "" || s.SASLPassword == "" {
		return errors.New(errors.ErrCodeValidation, "SASL credentials required")
	}
	return nil
}

func (s SecurityConfig) mechanism() (sasl.Mechanism, error) {
	if !s.SASLEnabled {
		return nil, nil
	}
	switch s.SASLMechanism {
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, s.SASLUsername, s.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, s.SASLUsername, s.SASLPassword)
	default:
		return plain.Mechanism{Username: s.SASLUsername, Password: s.SASLPassword}, nil
	}
}

func (s SecurityConfig) tlsConfig() *tls.Config {
	if !s.TLSEnabled {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

//Personal.AI order the ending
