package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init configures the package logger. Development mode writes human-readable
// console lines with caller info, everything else writes JSON.
func Init(w io.Writer, isDevelopment bool, level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if isDevelopment {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
			Level(lvl).
			With().
			Timestamp().
			Caller().
			Logger()
	} else {
		logger = zerolog.New(w).
			Level(lvl).
			With().
			Timestamp().
			Logger()
	}
}

func Logger() *zerolog.Logger {
	return &logger
}

func WithContext(ctx context.Context) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}

	return logger.With().
		Str("traceId", span.SpanContext().TraceID().String()).
		Str("spanId", span.SpanContext().SpanID().String()).
		Logger()
}

func Info(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Info()
}

func Error(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Error()
}

func Debug(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Debug()
}

func Warn(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Warn()
}
