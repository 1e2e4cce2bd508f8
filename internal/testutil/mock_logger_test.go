package testutil_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)
	v, ok := messages[0].Field("key")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_DerivedLoggersShareEntries(t *testing.T) {
	logger := testutil.NewMockLogger()

	ctx := logging.WithRequestID(context.Background(), "req-9")
	child := logger.Named("batch").Named("csv").WithContext(ctx).WithError(errors.New("boom"))
	child.Warn("row skipped", logging.Int("row", 3))

	entry, ok := logger.Find("warn", "row skipped")
	require.True(t, ok)
	assert.Equal(t, "batch.csv", entry.Logger)

	id, _ := entry.Field(logging.FieldRequestID)
	assert.Equal(t, "req-9", id)
	msg, _ := entry.Field("error")
	assert.Equal(t, "boom", msg)
	row, _ := entry.Field("row")
	assert.EqualValues(t, 3, row)
}

func TestMockLogger_SetLevel(t *testing.T) {
	logger := testutil.NewMockLogger()
	logger.With(logging.String("a", "b")).SetLevel(logging.LevelDebug)
	assert.Equal(t, logging.LevelDebug, logger.Level())
	assert.NoError(t, logger.Sync())

	var _ logging.Logger = logger
}

//Personal.AI order the ending
