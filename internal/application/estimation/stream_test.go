package estimation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simpol/pkg/errors"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(ctx context.Context, topic, key string, v interface{}, headers map[string]string) error {
	return m.Called(ctx, topic, key, v, headers).Error(0)
}

type streamCounter struct {
	ok, failed int
}

func (c *streamCounter) RecordStreamMessage(_ string, ok bool) {
	if ok {
		c.ok++
	} else {
		c.failed++
	}
}

func newTestProcessor(pub ResultPublisher, counter *streamCounter) *StreamProcessor {
	p := NewStreamProcessor(newTestService(Options{Source: "stream"}), pub, "simpol.estimate.result", counter, nil)
	p.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return p
}

func captureResult(pub *mockPublisher, key string) *stypes.StreamResult {
	var got stypes.StreamResult
	pub.On("PublishJSON", mock.Anything, "simpol.estimate.result", key, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(3).(stypes.StreamResult) }).
		Return(nil).Once()
	return &got
}

func TestStreamProcessor_Success(t *testing.T) {
	pub := new(mockPublisher)
	counter := &streamCounter{}
	got := captureResult(pub, "req-1")

	err := newTestProcessor(pub, counter).Process(context.Background(), "k",
		[]byte(`{"request_id":"req-1","smiles":"CCO","name":"ethanol","temperatures_k":[290,300]}`))
	require.NoError(t, err)
	pub.AssertExpectations(t)

	assert.Equal(t, "req-1", got.RequestID)
	assert.False(t, got.Result.Failed())
	assert.Equal(t, "ethanol", got.Result.Name)
	assert.Len(t, got.Result.Points, 2)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), time.Time(got.ProcessedAt))
	assert.Equal(t, 1, counter.ok)
}

func TestStreamProcessor_KeyIsDefaultRequestID(t *testing.T) {
	pub := new(mockPublisher)
	got := captureResult(pub, "from-key")

	require.NoError(t, newTestProcessor(pub, &streamCounter{}).Process(context.Background(), "from-key", []byte(`{"smiles":"CO"}`)))
	assert.Equal(t, "from-key", got.RequestID)
}

func TestStreamProcessor_FailedEstimateIsPublished(t *testing.T) {
	pub := new(mockPublisher)
	counter := &streamCounter{}
	got := captureResult(pub, "r2")

	err := newTestProcessor(pub, counter).Process(context.Background(), "r2", []byte(`{"request_id":"r2","smiles":"C1CC"}`))
	require.NoError(t, err)
	require.True(t, got.Result.Failed())
	assert.Equal(t, string(errors.CodeMalformedSMILES), got.Result.Error.Code)
	assert.Equal(t, "C1CC", got.Result.SMILES)
	assert.Equal(t, 1, counter.failed)
}

func TestStreamProcessor_MalformedPayload(t *testing.T) {
	pub := new(mockPublisher)
	got := captureResult(pub, "r3")

	require.NoError(t, newTestProcessor(pub, &streamCounter{}).Process(context.Background(), "r3", []byte(`{not json`)))
	require.True(t, got.Result.Failed())
	assert.Equal(t, string(errors.ErrCodeSerialization), got.Result.Error.Code)
}

func TestStreamProcessor_PublishError(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	err := newTestProcessor(pub, &streamCounter{}).Process(context.Background(), "r4", []byte(`{"smiles":"CCO"}`))
	assert.ErrorIs(t, err, assert.AnError)
}

//Personal.AI order the ending
