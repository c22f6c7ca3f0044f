// internal/common/logger/logger_test.go
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
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestZapWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).
		WithFields(map[string]interface{}{"taskType": "generate-provider-matches"}).
		WithError(errors.New("redis down"))

	log.Warn("budget read failed", map[string]interface{}{
		"userId":   "user-1",
		"category": "venue",
		"cause":    errors.New("timeout"),
	})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "budget read failed", entries[0].Message)
		assert.Equal(t, "generate-provider-matches", ctx["taskType"])
		assert.Equal(t, "redis down", ctx["error"])
		assert.Equal(t, "timeout", ctx["cause"])
		assert.Equal(t, "venue", ctx["category"])
	}
}

func TestBuild_AddsServiceField(t *testing.T) {
	l, err := Build(Options{Level: "debug", Format: "json", OutputPaths: []string{"stderr"}, Service: "matchmaking-workers"})
	assert.NoError(t, err)
	assert.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNewNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.With(map[string]interface{}{"a": 1}).Info("ignored", nil)
	})
}
