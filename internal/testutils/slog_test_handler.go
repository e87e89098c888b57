package testutils

import (
	"context"
	"log/slog"
	"sync"
)

// LogEntry is a captured record: its level, message, and attributes.
type LogEntry map[string]any

// TestSlogHandler is a memory-backed slog.Handler.
type TestSlogHandler struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	attrs   []slog.Attr
	level   slog.Level
}

// NewTestSlogHandler captures records at level and above.
func NewTestSlogHandler(level slog.Level) *TestSlogHandler {
	return &TestSlogHandler{
		mu:      &sync.Mutex{},
		entries: &[]LogEntry{},
		level:   level,
	}
}

// Logger returns a logger writing to h.
func (h *TestSlogHandler) Logger() *slog.Logger {
	return slog.New(h)
}

func (h *TestSlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *TestSlogHandler) Handle(_ context.Context, r slog.Record) error {
	entry := make(LogEntry, len(h.attrs)+r.NumAttrs()+2)
	entry["level"] = r.Level.String()
	entry["message"] = r.Message
	for _, attr := range h.attrs {
		entry[attr.Key] = attr.Value.Resolve().Any()
	}
	r.Attrs(func(attr slog.Attr) bool {
		entry[attr.Key] = attr.Value.Resolve().Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.entries = append(*h.entries, entry)
	return nil
}

// WithAttrs shares the entry list with h. Groups are flattened.
func (h *TestSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *TestSlogHandler) WithGroup(string) slog.Handler {
	return h
}

// Entries returns a copy of every captured entry.
func (h *TestSlogHandler) Entries() []LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]LogEntry, len(*h.entries))
	copy(result, *h.entries)
	return result
}

// Find returns the captured entries with the given message.
func (h *TestSlogHandler) Find(message string) []LogEntry {
	var found []LogEntry
	for _, e := range h.Entries() {
		if e["message"] == message {
			found = append(found, e)
		}
	}
	return found
}

// Clear drops the captured entries.
func (h *TestSlogHandler) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.entries = (*h.entries)[:0]
}
