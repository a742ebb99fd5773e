package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	log.Info("gate decision", map[string]any{"operation": "summarize", "decision": "admit"})
	log.With(map[string]any{"request_id": "abc"}).Warn("chain query failed", map[string]any{"error": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "gate decision", entries[0].Message)
	assert.Equal(t, "summarize", entries[0].ContextMap()["operation"])
	assert.Equal(t, "admit", entries[0].ContextMap()["decision"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "abc", entries[1].ContextMap()["request_id"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNewZapLogger(t *testing.T) {
	log, err := NewZapLogger("debug")
	require.NoError(t, err)
	log.Debug("hello", nil)
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	l.With(map[string]any{"k": "v"}).Error("ignored", nil)
}
