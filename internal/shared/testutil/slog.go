// Package testutil provides shared test helpers, currently a buffering slog
// handler for asserting on structured log output.
package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

// LogRecord is a captured log record
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type recordStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// CaptureHandler buffers log records so tests can assert on them. Handlers
// derived via WithAttrs share the same record store.
type CaptureHandler struct {
	store *recordStore
	base  []slog.Attr
	t     *testing.T
}

// NewCaptureHandler creates a buffering handler. When t is non-nil, records
// are echoed to the test log for debugging.
func NewCaptureHandler(t *testing.T) *CaptureHandler {
	return &CaptureHandler{store: &recordStore{}, t: t}
}

// Logger returns a slog.Logger backed by the handler
func (h *CaptureHandler) Logger() *slog.Logger {
	return slog.New(h)
}

// Handle implements slog.Handler
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.base)+r.NumAttrs())
	for _, a := range h.base {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	h.store.records = append(h.store.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.store.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// Enabled implements slog.Handler; everything is captured.
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

// WithAttrs implements slog.Handler
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	base := make([]slog.Attr, 0, len(h.base)+len(attrs))
	base = append(base, h.base...)
	base = append(base, attrs...)
	return &CaptureHandler{store: h.store, base: base, t: h.t}
}

// WithGroup implements slog.Handler; groups are flattened.
func (h *CaptureHandler) WithGroup(string) slog.Handler { return h }

// Records returns a copy of the captured records
func (h *CaptureHandler) Records() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	out := make([]LogRecord, len(h.store.records))
	copy(out, h.store.records)
	return out
}

// HasMessage reports whether any record carries the given message
func (h *CaptureHandler) HasMessage(message string) bool {
	for _, r := range h.Records() {
		if r.Message == message {
			return true
		}
	}
	return false
}
