package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewConfig_NormalizesFormat(t *testing.T) {
	assert.Equal(t, "json", NewConfig("INFO", "json").Format)
	assert.Equal(t, "console", NewConfig("info", "xml").Format)
	assert.Equal(t, "info", NewConfig("INFO", "json").Level)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestBuild(t *testing.T) {
	l, err := Build(Config{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestShouldEnableColor_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, shouldEnableColor())
}

func TestWrappers_WriteToGlobalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	once.Do(func() {})
	prev := globalLogger
	globalLogger = zap.New(core, zap.AddCaller())
	t.Cleanup(func() { globalLogger = prev })

	Info("starting", zap.String("env", "test"))
	Warn("debug on")
	Error("shutdown failed")
	With(zap.String("service", "butler")).Info("child")

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "starting", entries[0].Message)
	assert.Equal(t, "test", entries[0].ContextMap()["env"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "butler", entries[3].ContextMap()["service"])

	// caller skip points the entry at the call site, not this package's wrapper
	for _, e := range entries[:3] {
		assert.Contains(t, e.Caller.File, "logger_test.go")
	}
}
