package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRecoveredPanicIsRecordedOnRequestSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))

	r := chi.NewRouter()
	useMiddleware(r)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	})

	w, env := do(t, r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Internal server error", env.Error)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /boom", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)

	var eventNames []string
	for _, e := range spans[0].Events {
		eventNames = append(eventNames, e.Name)
	}
	assert.Contains(t, eventNames, "exception")
}
