package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestWithContextAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, false, "debug")

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	Info(ctx).Str("plate", "ABC123").Msg("vehicle checked in")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "vehicle checked in", entry["message"])
	assert.Equal(t, "ABC123", entry["plate"])
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["traceId"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["spanId"])
}

func TestWithContextWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, false, "info")

	Info(context.Background()).Msg("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "traceId")
}

func TestInitLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, false, "warn")

	Info(context.Background()).Msg("dropped")
	assert.Empty(t, buf.String())

	Warn(context.Background()).Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestInitInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, false, "loud")

	Debug(context.Background()).Msg("dropped")
	assert.Empty(t, buf.String())

	Info(context.Background()).Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}
