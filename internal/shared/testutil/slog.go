package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log call with its attributes flattened.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is a slog.Handler that keeps every record in memory.
type LogRecorder struct {
	mu      *sync.Mutex
	records *[]LogRecord
	attrs   []slog.Attr
}

// NewTestLogger returns a logger writing into a fresh recorder.
func NewTestLogger() (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{mu: &sync.Mutex{}, records: &[]LogRecord{}}
	return slog.New(rec), rec
}

// Enabled implements slog.Handler
func (h *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler
func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// WithAttrs implements slog.Handler. Derived handlers share the record list.
func (h *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogRecorder{
		mu:      h.mu,
		records: h.records,
		attrs:   append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

// WithGroup implements slog.Handler. Groups are ignored.
func (h *LogRecorder) WithGroup(string) slog.Handler { return h }

// Records returns a copy of everything captured so far.
func (h *LogRecorder) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LogRecord(nil), *h.records...)
}

// Find returns the first record at level whose message contains msg.
func (h *LogRecorder) Find(level slog.Level, msg string) (LogRecord, bool) {
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, msg) {
			return r, true
		}
	}
	return LogRecord{}, false
}

// AssertLogged fails the test unless a record at level contains msg.
func AssertLogged(t *testing.T, h *LogRecorder, level slog.Level, msg string) LogRecord {
	t.Helper()
	r, ok := h.Find(level, msg)
	if !ok {
		t.Errorf("expected %s log containing %q", level, msg)
		for _, got := range h.Records() {
			t.Logf("  [%s] %s %v", got.Level, got.Message, got.Attrs)
		}
	}
	return r
}
