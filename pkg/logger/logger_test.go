package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zap.AtomicLevel) *observer.ObservedLogs {
	t.Helper()
	core, recorded := observer.New(level)
	prev := Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })
	return recorded
}

func TestInitConfiguresGlobalLogger(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { Set(prev) })

	require.NoError(t, Init("debug"))
	require.True(t, Logger().Core().Enabled(zap.DebugLevel))
}

func TestInitWithOptionsConsoleEncoding(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { Set(prev) })

	require.NoError(t, InitWithOptions(Options{Level: "warn", Encoding: "console"}))
	require.False(t, Logger().Core().Enabled(zap.InfoLevel))
	require.True(t, Logger().Core().Enabled(zap.WarnLevel))
}

func TestInitFallsBackToInfoOnBadLevel(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { Set(prev) })

	require.NoError(t, Init("chatty"))
	require.False(t, Logger().Core().Enabled(zap.DebugLevel))
	require.True(t, Logger().Core().Enabled(zap.InfoLevel))
}

func TestLoggingHelpersEmitEntries(t *testing.T) {
	recorded := observe(t, zap.NewAtomicLevelAt(zap.DebugLevel))

	Info("info message", zap.String("k", "v"))
	Error("error message")
	Warn("warn message")
	Debug("debug message")

	entries := recorded.All()
	require.Len(t, entries, 4)
	want := []string{"info message", "error message", "warn message", "debug message"}
	for i, entry := range entries {
		require.Equal(t, want[i], entry.Message)
	}
	require.Equal(t, "v", entries[0].ContextMap()["k"])
}

func TestWithModuleAttachesModuleField(t *testing.T) {
	recorded := observe(t, zap.NewAtomicLevelAt(zap.InfoLevel))

	WithModule("hierarchy").Info("module test")

	entries := recorded.All()
	require.Len(t, entries, 1)
	require.Equal(t, "hierarchy", entries[0].ContextMap()["module"])
}

func TestSetNilInstallsNop(t *testing.T) {
	prev := Set(nil)
	t.Cleanup(func() { Set(prev) })

	require.NotNil(t, Logger())
	Info("dropped")
}
