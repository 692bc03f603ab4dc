package logsvc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/montree/core"
)

func newObservedLogger(t *testing.T) (*RollbarLogger, *observer.ObservedLogs) {
	zcore, logs := observer.New(zapcore.DebugLevel)
	l := NewRollbarLogger(zap.New(zcore).Sugar(), &core.Config{Env: "TEST", Build: "test"})
	l.Enable(false)
	t.Cleanup(func() { l.Enable(true) })
	return l, logs
}

func TestRollbarLogger_prepare(t *testing.T) {
	l := RollbarLogger{}
	boom := errors.New("boom")

	rbArgs, kvs := l.prepare("failed", []interface{}{boom, map[string]interface{}{"path": "/v1"}, "scope", "class-1", 42, "dangling"})

	require.Len(t, rbArgs, 3)
	assert.Equal(t, "failed", rbArgs[0])
	assert.Equal(t, boom, rbArgs[1])
	assert.Equal(t, map[string]interface{}{"path": "/v1", "scope": "class-1"}, rbArgs[2])
	assert.Equal(t, []interface{}{"error", "boom", "path", "/v1", "scope", "class-1", "arg4", 42, "extra", "dangling"}, kvs)

	rbArgs, kvs = l.prepare("plain", nil)
	assert.Equal(t, []interface{}{"plain"}, rbArgs)
	assert.Empty(t, kvs)
}

func TestRollbarLogger_levels(t *testing.T) {
	l, logs := newObservedLogger(t)

	l.Debug("loading run", "scope", "class-1")
	l.Info("scope reconciled", "scope", "class-1", "progress_upgraded", 3)
	l.Warn("assignment skipped", errors.New("unknown area"), "assignment", "a-1")
	l.Error("writing progress failed", errors.New("db down"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	levels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		assert.Equal(t, levels[i], e.Level)
	}
	assert.Equal(t, map[string]interface{}{"scope": "class-1", "progress_upgraded": int64(3)}, entries[1].ContextMap())
	assert.Equal(t, map[string]interface{}{"error": "unknown area", "assignment": "a-1"}, entries[2].ContextMap())
	assert.Equal(t, "writing progress failed", entries[3].Message)
}
