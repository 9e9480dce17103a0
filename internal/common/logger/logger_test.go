package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestZapAdapter_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).With(map[string]interface{}{"component": "test"})

	log.WithError(errors.New("boom")).Warn("something failed", map[string]interface{}{
		"attempt": 2,
		"cause":   errors.New("inner"),
	})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "something failed", entries[0].Message)
		assert.Equal(t, "test", ctx["component"])
		assert.Equal(t, "boom", ctx["error"])
		assert.Equal(t, "inner", ctx["cause"])
		assert.EqualValues(t, 2, ctx["attempt"])
	}
}

func TestNew_Formats(t *testing.T) {
	assert.NotNil(t, New("debug", "json"))
	assert.NotNil(t, New("info", "console"))
	assert.NotNil(t, NewStructured("warn", "json"))
	NewNoOpLogger().Info("discarded", nil)
}
