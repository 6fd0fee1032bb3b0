package gist

import (
	"context"
	"io"
	"log/slog"
)

// CallEvent records metadata about a single API call.
type CallEvent struct {
	Op        string
	Method    string
	Status    int
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about API calls for logging and metrics.
type Observer interface {
	OnCallComplete(ctx context.Context, event CallEvent)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(context.Context, CallEvent) {}

// LogObserver writes call events through slog.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))}
}

// NewSlogObserver creates an Observer on an existing logger.
func NewSlogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(ctx context.Context, e CallEvent) {
	attrs := []any{"op", e.Op, "method", e.Method, "status", e.Status, "latency_ms", e.LatencyMs}
	if !e.Success {
		o.logger.WarnContext(ctx, "gist_call", append(attrs, "error_code", e.ErrorCode)...)
		return
	}
	o.logger.DebugContext(ctx, "gist_call", attrs...)
}
