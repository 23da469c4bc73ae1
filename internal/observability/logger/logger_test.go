package logger

import (
	"context"
	"testing"

	"github.com/smallbiznis/salescloser/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(nil, Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewBuildsLogger(t *testing.T) {
	log, err := New(nil, Config{ServiceName: "salescloser", Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewDefaultsToWarn(t *testing.T) {
	log, err := New(nil, Config{})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestWithContextAddsCorrelationID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := correlation.WithID(context.Background(), "01HZXTEST")
	WithContext(ctx, base).Info("sync finished")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "01HZXTEST", entries[0].ContextMap()["correlation_id"])
}

func TestWithContextWithoutFieldsReturnsBase(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, WithContext(context.Background(), base))
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("select * from deals"))
	assert.Equal(t, "UPDATE", operationFromSQL("  update deals set stage = ?"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}
