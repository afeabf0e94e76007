package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("creates a console logger", func(t *testing.T) {
		logger, err := New(&Config{Level: "debug", Format: "console", Output: "stdout", TimeFormat: "15:04:05"})
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("creates a json logger at warn level", func(t *testing.T) {
		logger, err := New(&Config{Level: "warn", Format: "json", Output: "stderr", TimeFormat: "15:04:05"})
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
	})
}

func TestNewForEnvironment(t *testing.T) {
	logger, err := NewForEnvironment("production")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestContext(t *testing.T) {
	t.Run("round-trips the logger", func(t *testing.T) {
		logger := zap.NewNop()
		ctx := WithContext(context.Background(), logger)
		assert.Same(t, logger, FromContext(ctx))
	})

	t.Run("missing logger yields a no-op", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("request id round-trips", func(t *testing.T) {
		ctx, enriched := WithRequestID(context.Background(), zap.NewNop(), "req-123")
		assert.NotNil(t, enriched)
		assert.Equal(t, "req-123", GetRequestID(ctx))
	})

	t.Run("missing request id is empty", func(t *testing.T) {
		assert.Empty(t, GetRequestID(context.Background()))
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}
