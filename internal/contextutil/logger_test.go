package contextutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if got := LoggerFromContext(WithLogger(context.Background(), logger)); got != logger {
		t.Error("LoggerFromContext() should return the logger stored with WithLogger")
	}
	if got := LoggerFromContext(context.Background()); got != slog.Default() {
		t.Error("LoggerFromContext() should fall back to slog.Default()")
	}

	ctx := context.WithValue(context.Background(), LoggerKey(), "not a logger")
	if got := LoggerFromContext(ctx); got != slog.Default() {
		t.Error("LoggerFromContext() should ignore values of the wrong type")
	}
}
