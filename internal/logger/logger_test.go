package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(INFO, &buf)

	l.Info("Quote generated", Fields{"quote_id": "q1", "total": "891.58"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Quote generated", entry["message"])
	assert.Equal(t, "q1", entry["quote_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(WARN, &buf)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"ERROR", ERROR},
		{"", INFO},
		{"verbose", INFO},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLogger_WithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(INFO, &buf)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	l.WithContext(ctx).Info("handled")

	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Same(t, l, l.WithContext(context.Background()))
}
