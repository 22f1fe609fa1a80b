package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	return exporter
}

func spanAttrs(span tracetest.SpanStub) map[string]string {
	attrs := make(map[string]string, len(span.Attributes))
	for _, a := range span.Attributes {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	return attrs
}

func TestTraceQuery_Success(t *testing.T) {
	exporter := setupTestTracer(t)

	_, end := TraceQuery(context.Background(), "GetOrder", "SELECT order_id FROM pedidos WHERE order_id = $1")
	end(nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "db.GetOrder", span.Name)

	attrs := spanAttrs(span)
	assert.Equal(t, "postgresql", attrs["db.system"])
	assert.Equal(t, "GetOrder", attrs["db.operation"])
	assert.Equal(t, "SELECT order_id FROM pedidos WHERE order_id = $1", attrs["db.statement"])
	assert.Equal(t, codes.Unset, span.Status.Code)
}

func TestTraceQuery_Error(t *testing.T) {
	exporter := setupTestTracer(t)

	_, end := TraceQuery(context.Background(), "UpdateStatus", "UPDATE pedidos SET status = $1 WHERE order_id = $2")
	end(errors.New("connection refused"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.NotEmpty(t, spans[0].Events, "error event should be recorded")
}

func TestTraceQuery_ChildOfParent(t *testing.T) {
	exporter := setupTestTracer(t)

	ctx, parent := otel.Tracer("test").Start(context.Background(), "parent")
	_, end := TraceQuery(ctx, "ListOrders", "SELECT * FROM pedidos")
	end(nil)
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "db.ListOrders", spans[0].Name)
	assert.Equal(t, parent.SpanContext().SpanID(), spans[0].Parent.SpanID())
}

func TestTraceRedis_SystemAttribute(t *testing.T) {
	exporter := setupTestTracer(t)

	_, end := TraceRedis(context.Background(), "GetOrder", "HGET")
	end(nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "redis", attrs["db.system"])
	assert.Equal(t, "HGET", attrs["db.statement"])
}

func TestSlowQueryLogging_SlowQuery(t *testing.T) {
	setupTestTracer(t)

	var buf bytes.Buffer
	SetSlowQueryLogging(time.Nanosecond, slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "SlowSelect", "SELECT * FROM pedidos")
	time.Sleep(time.Millisecond)
	end(nil)

	out := buf.String()
	assert.Contains(t, out, "slow query detected")
	assert.Contains(t, out, "SlowSelect")
	assert.Contains(t, out, "SELECT * FROM pedidos")
}

func TestSlowQueryLogging_FastQuery_NoLog(t *testing.T) {
	setupTestTracer(t)

	var buf bytes.Buffer
	SetSlowQueryLogging(time.Hour, slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "FastSelect", "SELECT 1")
	end(nil)

	assert.NotContains(t, buf.String(), "slow query detected")
}

func TestSlowQueryLogging_Disabled(t *testing.T) {
	setupTestTracer(t)
	SetSlowQueryLogging(0, nil)

	_, end := TraceQuery(context.Background(), "AnyOp", "SELECT 1")
	assert.NotPanics(t, func() { end(nil) })
}

func TestSlowQueryLogging_WithError(t *testing.T) {
	setupTestTracer(t)

	var buf bytes.Buffer
	SetSlowQueryLogging(time.Nanosecond, slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "InsertOrder", "INSERT INTO pedidos VALUES ($1)")
	time.Sleep(time.Millisecond)
	end(errors.New("duplicate key value violates unique constraint"))

	out := buf.String()
	assert.Contains(t, out, "slow query detected")
	assert.Contains(t, out, "duplicate key value")
}

func TestSetSlowQueryLogging_Concurrent(t *testing.T) {
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			SetSlowQueryLogging(time.Duration(i)*time.Millisecond, logger)
		}
	}()

	for i := 0; i < 100; i++ {
		getSlowQueryConfig()
	}
	<-done
}
