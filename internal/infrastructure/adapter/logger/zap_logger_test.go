package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
)

func TestZapLogger_Levels(t *testing.T) {
	obsCore, logs := observer.New(zap.DebugLevel)
	log := NewFromZap(zap.New(obsCore), core.LogLevelInfo)

	log.Debug("hidden", nil)
	log.Info("shown", map[string]any{"user_id": uint64(7)})
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
	assert.Equal(t, uint64(7), logs.All()[0].ContextMap()["user_id"])

	log.SetLevel(core.LogLevelError)
	assert.Equal(t, core.LogLevelError, log.GetLevel())
	log.Warn("hidden too", nil)
	log.Error("failed", map[string]any{"error": errors.New("boom")})
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "boom", logs.All()[1].ContextMap()["error"])
}

func TestZapLogger_With(t *testing.T) {
	obsCore, logs := observer.New(zap.DebugLevel)
	parent := NewFromZap(zap.New(obsCore), core.LogLevelDebug)

	child := parent.With(map[string]any{"component": "withdrawal"})
	child.Info("approved", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "withdrawal", logs.All()[0].ContextMap()["component"])

	parent.SetLevel(core.LogLevelWarn)
	child.Info("dropped", nil)
	assert.Equal(t, 1, logs.Len())
}

func TestNewZapLogger(t *testing.T) {
	log, err := NewZapLogger(Options{Production: true, Level: "warn"})
	require.NoError(t, err)
	assert.Equal(t, core.LogLevelWarn, log.GetLevel())
}

func TestNoopLogger(t *testing.T) {
	log := NewNoopLogger()
	log.SetLevel(core.LogLevelDebug)
	assert.Equal(t, core.LogLevelDebug, log.GetLevel())
	assert.Same(t, log, log.With(map[string]any{"a": 1}))
	assert.NoError(t, log.Flush())
}
