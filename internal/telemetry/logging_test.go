package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newBufferLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
	return slog.New(&traceHandler{baseHandler: handler}), &buf
}

func spanContext(t *testing.T) (context.Context, func()) {
	t.Helper()

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	otel.SetTracerProvider(tp)

	ctx, span := otel.Tracer("test").Start(context.Background(), "test-span")

	return ctx, func() {
		span.End()
		otel.SetTracerProvider(nil)
	}
}

func parseEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestTraceCorrelation(t *testing.T) {
	t.Run("records inside a span carry trace and span ids", func(t *testing.T) {
		logger, buf := newBufferLogger(slog.LevelInfo)
		ctx, done := spanContext(t)
		defer done()

		logger.InfoContext(ctx, "order created", "order_id", 42)

		entry := parseEntry(t, buf)
		if id, ok := entry["trace_id"].(string); !ok || id == "" {
			t.Error("expected non-empty trace_id")
		}
		if id, ok := entry["span_id"].(string); !ok || id == "" {
			t.Error("expected non-empty span_id")
		}
		if entry["order_id"] != float64(42) {
			t.Errorf("expected order_id 42, got %v", entry["order_id"])
		}
	})

	t.Run("records outside a span omit trace fields", func(t *testing.T) {
		logger, buf := newBufferLogger(slog.LevelInfo)

		logger.InfoContext(context.Background(), "startup")

		entry := parseEntry(t, buf)
		if _, exists := entry["trace_id"]; exists {
			t.Error("expected no trace_id without an active span")
		}
		if _, exists := entry["span_id"]; exists {
			t.Error("expected no span_id without an active span")
		}
		if entry["msg"] != "startup" {
			t.Errorf("expected msg 'startup', got %v", entry["msg"])
		}
	})

	t.Run("trace ids stay at the root when groups are used", func(t *testing.T) {
		logger, buf := newBufferLogger(slog.LevelInfo)
		ctx, done := spanContext(t)
		defer done()

		logger.WithGroup("http").InfoContext(ctx, "request", "method", "GET")

		entry := parseEntry(t, buf)
		if _, ok := entry["trace_id"].(string); !ok {
			t.Error("expected trace_id at the root level")
		}

		httpGroup, ok := entry["http"].(map[string]any)
		if !ok {
			t.Fatal("expected http group")
		}
		if httpGroup["method"] != "GET" {
			t.Errorf("expected method in http group, got %v", httpGroup["method"])
		}
		if _, exists := httpGroup["trace_id"]; exists {
			t.Error("trace_id must not move into the group")
		}
	})

	t.Run("With attributes survive alongside trace fields", func(t *testing.T) {
		logger, buf := newBufferLogger(slog.LevelInfo)
		ctx, done := spanContext(t)
		defer done()

		logger.With("request_id", "req-9").InfoContext(ctx, "handled")

		entry := parseEntry(t, buf)
		if entry["request_id"] != "req-9" {
			t.Errorf("expected request_id, got %v", entry["request_id"])
		}
		if _, ok := entry["trace_id"].(string); !ok {
			t.Error("expected trace_id alongside bound attrs")
		}
	})
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn)
	ctx := context.Background()

	logger.InfoContext(ctx, "filtered")
	if buf.Len() > 0 {
		t.Errorf("expected info to be filtered, got %s", buf.String())
	}

	logger.WarnContext(ctx, "kept")
	if buf.Len() == 0 {
		t.Error("expected warn to be logged")
	}
}
