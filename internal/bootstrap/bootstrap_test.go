package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simpol/internal/config"
	"github.com/turtacn/simpol/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

func TestNew_InProcessOnly(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Metrics.Enabled = true

	rt, err := New(cfg, logging.NewNopLogger(), SourceCLI)
	require.NoError(t, err)
	defer rt.Close()

	assert.NotNil(t, rt.Service)
	assert.NotNil(t, rt.Metrics)
	assert.Nil(t, rt.Redis)
	assert.Nil(t, rt.MinIO)
	assert.Nil(t, rt.Publisher)

	res, err := rt.Service.Estimate(context.Background(), &stypes.EstimateRequest{SMILES: "CCO"})
	require.NoError(t, err)
	require.Len(t, res.Points, 1)
	assert.InDelta(t, -1.187, res.Points[0].Log10P, 0.01)
}

func TestNew_MetricsDisabledUsesNopCollector(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Metrics.Enabled = false

	rt, err := New(cfg, nil, SourceHTTP)
	require.NoError(t, err)
	assert.NotNil(t, rt.Collector)
	assert.NoError(t, rt.Close())
}

func TestNew_CollectorErrorIsReturned(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Namespace = ""

	rt, err := New(cfg, nil, SourceHTTP)
	assert.Error(t, err)
	assert.Nil(t, rt)
}

func TestRuntime_CloseReverseOrderAndJoin(t *testing.T) {
	var order []int
	boom := errors.New("boom")
	rt := &Runtime{closers: []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return boom },
	}}

	err := rt.Close()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{2, 1}, order)
	assert.NoError(t, rt.Close())

	var nilRuntime *Runtime
	assert.NoError(t, nilRuntime.Close())
}

func TestServiceOptions(t *testing.T) {
	opts := ServiceOptions(config.EstimationConfig{
		Temperatures: []float64{273.15, 298.15},
		Concurrency:  8,
		OnError:      "abort",
		CacheTTL:     time.Hour,
	}, SourceStream)

	assert.Equal(t, []float64{273.15, 298.15}, opts.Temperatures)
	assert.Equal(t, 8, opts.Concurrency)
	assert.Equal(t, stypes.OnErrorAbort, opts.OnError)
	assert.Equal(t, time.Hour, opts.CacheTTL)
	assert.Equal(t, SourceStream, opts.Source)
}

func TestKafkaConfigs(t *testing.T) {
	kc := config.NewDefaultConfig().Kafka
	kc.SASLMechanism = "SCRAM-SHA-512"
	kc.SASLUsername = "u"
	kc.SASLPassword = "p"

	cc := ConsumerConfig(kc)
	assert.Equal(t, kc.RequestTopic, cc.Topic)
	assert.Equal(t, kc.GroupID, cc.GroupID)
	assert.True(t, cc.Security.SASLEnabled)
	assert.Equal(t, "SCRAM-SHA-512", cc.Security.SASLMechanism)
	assert.Equal(t, kc.MaxRetries, cc.Retry.MaxRetries)
	assert.Equal(t, kc.RetryBackoff, cc.Retry.RetryBackoff)
	assert.Equal(t, kc.MaxRetryBackoff, cc.Retry.MaxRetryBackoff)
	assert.Equal(t, config.DefaultKafkaDLQTopic, cc.Retry.DeadLetterTopic)
	assert.NoError(t, kafka.ValidateConsumerConfig(cc))

	pc := ProducerConfig(config.NewDefaultConfig().Kafka)
	assert.Equal(t, "all", pc.Acks)
	assert.False(t, pc.Security.SASLEnabled)
}

func TestStoreConfigs(t *testing.T) {
	cfg := config.NewDefaultConfig()

	rc := RedisConfig(cfg.Redis)
	assert.Equal(t, cfg.Redis.Addrs, rc.Addrs)
	assert.Equal(t, cfg.Redis.DialTimeout, rc.DialTimeout)

	mc := MinIOConfig(cfg.MinIO)
	assert.Equal(t, cfg.MinIO.Bucket, mc.Bucket)
	assert.Equal(t, cfg.MinIO.Prefix, mc.Prefix)
	assert.Equal(t, cfg.MinIO.RetentionDays, mc.RetentionDays)
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(config.LogConfig{Level: "debug", Format: "console", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = NewLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

//Personal.AI order the ending
