package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// LogRecorder is a slog.Handler that captures records so tests can
// assert on logged behavior. Attributes and groups are not tracked;
// assertions work on level and message.
type LogRecorder struct {
	mu      sync.Mutex
	records []slog.Record
}

// NewLogRecorder creates a LogRecorder and a logger that writes to it.
func NewLogRecorder() (*LogRecorder, *slog.Logger) {
	recorder := &LogRecorder{}
	return recorder, slog.New(recorder)
}

// Enabled implements slog.Handler.
func (h *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *LogRecorder) WithAttrs([]slog.Attr) slog.Handler { return h }

// WithGroup implements slog.Handler.
func (h *LogRecorder) WithGroup(string) slog.Handler { return h }

// Contains reports whether any captured record at the given level has a
// message containing substr.
func (h *LogRecorder) Contains(level slog.Level, substr string) bool {
	return h.Count(level, substr) > 0
}

// Count returns the number of captured records at the given level whose
// message contains substr.
func (h *LogRecorder) Count(level slog.Level, substr string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, r := range h.records {
		if r.Level == level && strings.Contains(r.Message, substr) {
			n++
		}
	}
	return n
}
