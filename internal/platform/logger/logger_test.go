package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhq/volunteer-api/internal/config"
	"github.com/volunteerhq/volunteer-api/internal/platform/logger"
)

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "warn"}, &buf)
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Info("dropped")
	l.Warn("kept", "volunteer_id", 12)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, float64(12), entry["volunteer_id"])
	assert.Same(t, l, slog.Default())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  slog.Level
		valid bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"fatal", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := logger.ParseLevel(tc.name)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.valid, ok)
		})
	}
}

func TestFromContextOrDefault(t *testing.T) {
	fallback, _ := logger.GetTestLogger(t)
	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))

	stored, _ := logger.GetTestLogger(t)
	ctx := logger.WithLogger(context.Background(), stored)
	assert.Same(t, stored, logger.FromContextOrDefault(ctx, fallback))
	assert.Same(t, stored, logger.FromContext(ctx))
}

func TestWithRequestID(t *testing.T) {
	base, buf := logger.GetTestLogger(t)
	ctx := logger.WithRequestID(logger.WithLogger(context.Background(), base), "req-42")

	assert.Equal(t, "req-42", logger.RequestID(ctx))
	logger.FromContext(ctx).Info("hello")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0]["request_id"])
}

func TestMiddleware(t *testing.T) {
	base, buf := logger.GetTestLogger(t)

	var seen string
	handler := middleware.RequestID(logger.Middleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
		logger.FromContext(r.Context()).Info("inside")
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/events/2025/hotels", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "abc-123", seen)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "request started", entries[0]["msg"])
	assert.Equal(t, "inside", entries[1]["msg"])
	assert.Equal(t, "abc-123", entries[1]["request_id"])
}

func TestDiscard(t *testing.T) {
	l := logger.Discard()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
