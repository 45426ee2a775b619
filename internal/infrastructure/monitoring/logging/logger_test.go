package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: LevelInfo, Format: format})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/for/sure/claimtrack.log"}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestZapLogger_FieldsAreTyped(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	at := time.Date(2024, 3, 15, 16, 0, 0, 0, time.UTC)
	l.Info("classified",
		String("external_id", "000MC001"),
		Int("rule", 7),
		Bool("terminal", false),
		Duration("elapsed", 3*time.Millisecond),
		Time("now", at),
		Err(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "000MC001", ctx["external_id"])
	assert.Equal(t, int64(7), ctx["rule"])
	assert.Equal(t, false, ctx["terminal"])
	assert.Equal(t, 3*time.Millisecond, ctx["elapsed"])
	gotAt, ok := ctx["now"].(time.Time)
	require.True(t, ok)
	assert.True(t, at.Equal(gotAt))
	assert.Equal(t, "boom", ctx["error"])
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	l, logs := newObservedLogger(zapcore.WarnLevel)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown")

	assert.Equal(t, 2, logs.Len())
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	child := l.Named("dashboard").With(String("viewer", "CLAIMANT"))
	child.Info("presented")

	entry := logs.All()[0]
	assert.Equal(t, "dashboard", entry.LoggerName)
	assert.Equal(t, "CLAIMANT", entry.ContextMap()["viewer"])
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warn("x")
		l.Error("x")
		l.With(String("k", "v")).Named("n").Info("x")
	})
	assert.NoError(t, l.Sync())
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	l, _ := newObservedLogger(zapcore.InfoLevel)
	SetDefault(l)
	assert.Same(t, l, Default())

	SetDefault(nil)
	assert.Same(t, l, Default())
}
