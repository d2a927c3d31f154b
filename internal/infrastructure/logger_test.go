package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invdash/internal/config"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "test.log")

	logger, closer, err := NewLogger(config.LoggingConfig{
		Level:    "info",
		Output:   config.LogOutputFile,
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("test message", slog.String("key", "value"))
	logger.Debug("filtered out")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	entries := decodeLines(t, bytes.NewBuffer(content))
	require.Len(t, entries, 1)
	assert.Equal(t, "test message", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
	assert.Contains(t, entries[0], "source")
}

func TestNewLogger_ConsoleCloserIsNoop(t *testing.T) {
	_, closer, err := NewLogger(config.LoggingConfig{Level: "warn", Output: config.LogOutputConsole})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
}

func TestTraceHandler_InjectsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "debug").With(slog.String("component", "test"))

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.InfoContext(ctx, "with trace")
	logger.InfoContext(context.Background(), "without trace")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "trace-123", entries[0]["trace_id"])
	assert.Equal(t, "test", entries[0]["component"])
	assert.NotContains(t, entries[1], "trace_id")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)))
}
