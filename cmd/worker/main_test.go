package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simpol/internal/application/estimation"
	"github.com/turtacn/simpol/internal/bootstrap"
	"github.com/turtacn/simpol/internal/config"
	"github.com/turtacn/simpol/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/internal/testutil"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

type published struct {
	topic string
	key   string
	value stypes.StreamResult
}

type capturePublisher struct {
	msgs []published
}

func (c *capturePublisher) PublishJSON(_ context.Context, topic, key string, v interface{}, _ map[string]string) error {
	c.msgs = append(c.msgs, published{topic: topic, key: key, value: v.(stypes.StreamResult)})
	return nil
}

func TestMessageHandler_KeyAndHeaderFallback(t *testing.T) {
	pub := &capturePublisher{}
	svc := estimation.NewService(estimation.Options{}, nil)
	logger := testutil.NewMockLogger()
	handle := newMessageHandler(estimation.NewStreamProcessor(svc, pub, kafka.TopicEstimateResult, nil, logger))

	require.NoError(t, handle(context.Background(), &kafka.Message{
		Key:   []byte("req-1"),
		Value: []byte(`{"smiles":"CCO"}`),
	}))
	require.NoError(t, handle(context.Background(), &kafka.Message{
		Headers: map[string]string{kafka.HeaderRequestID: "req-2"},
		Value:   []byte(`{"smiles":"C("}`),
	}))

	require.Len(t, pub.msgs, 2)
	assert.Equal(t, kafka.TopicEstimateResult, pub.msgs[0].topic)
	assert.Equal(t, "req-1", pub.msgs[0].key)
	assert.False(t, pub.msgs[0].value.Result.Failed())

	assert.Equal(t, "req-2", pub.msgs[1].key)
	require.True(t, pub.msgs[1].value.Result.Failed())
	assert.Equal(t, "MOL_001", string(pub.msgs[1].value.Result.Error.Code))

	entry, ok := logger.Find("warn", "estimation request failed")
	require.True(t, ok)
	assert.Equal(t, "stream", entry.Logger)
	id, _ := entry.Field(logging.FieldRequestID)
	assert.Equal(t, "req-2", id)
	code, _ := entry.Field(logging.FieldErrorCode)
	assert.Equal(t, "MOL_001", code)
	assert.False(t, logger.HasMessage("error", "publishing result failed"))
}

func TestHealthRouter(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Metrics.Enabled = true
	rt, err := bootstrap.New(cfg, logging.NewNopLogger(), bootstrap.SourceStream)
	require.NoError(t, err)
	defer rt.Close()

	h := newHealthRouter(rt)
	for path, want := range map[string]int{
		"/healthz":         http.StatusOK,
		"/readyz":          http.StatusOK,
		"/metrics":         http.StatusOK,
		"/api/v1/estimate": http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}
}

//Personal.AI order the ending
