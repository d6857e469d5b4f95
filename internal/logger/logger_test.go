package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger_CapturesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core).Sugar())
	defer SetLogger(nil)

	Info("field updated", "object", "Account", "field", "billing")
	Error("save failed", "status", 500)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "field updated", entries[0].Message)
		assert.Equal(t, "Account", entries[0].ContextMap()["object"])
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	}
}

func TestSetLevel(t *testing.T) {
	defer level.SetLevel(zapcore.InfoLevel)

	assert.True(t, SetLevel("DEBUG"))
	assert.Equal(t, zapcore.DebugLevel, level.Level())
	assert.True(t, SetLevel(" warn "))
	assert.Equal(t, zapcore.WarnLevel, level.Level())
	assert.False(t, SetLevel("verbose"))
	assert.Equal(t, zapcore.WarnLevel, level.Level())
}
