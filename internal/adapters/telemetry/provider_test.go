package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/mpkg/internal/adapters/telemetry"
	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
)

func setupMonitor(t *testing.T) (*tracetest.SpanRecorder, *trace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func TestInterfaceSatisfaction(_ *testing.T) {
	var _ ports.Tracer = (*telemetry.OTelTracer)(nil)
	var _ ports.Span = (*telemetry.OTelSpan)(nil)
	var _ ports.Tracer = (*telemetry.NoOpTracer)(nil)
	var _ ports.Span = (*telemetry.NoOpSpan)(nil)
}

func TestOTelTracer_StartWithAttributes(t *testing.T) {
	sr, tp := setupMonitor(t)
	tracer := telemetry.NewOTelTracer(tp, "test-tracer")

	_, span := tracer.Start(context.Background(), "fetch",
		ports.WithAttribute("package", "Std"),
		ports.WithAttribute("wave", 2),
	)
	span.SetAttribute("cached", true)
	span.SetAttribute("sources", []string{"a", "b"})
	span.SetAttribute("dependency", domain.NewPackageName("Util"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "fetch", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "Std", attrs["package"].AsString())
	assert.Equal(t, int64(2), attrs["wave"].AsInt64())
	assert.True(t, attrs["cached"].AsBool())
	assert.Equal(t, []string{"a", "b"}, attrs["sources"].AsStringSlice())
	assert.Equal(t, "Util", attrs["dependency"].AsString())
}

func TestOTelTracer_EmitPlan(t *testing.T) {
	sr, tp := setupMonitor(t)
	tracer := telemetry.NewOTelTracer(tp, "test-tracer")

	// No span in context, nothing to attach the event to.
	tracer.EmitPlan(context.Background(), []string{"Std", "Util"})
	assert.Empty(t, sr.Ended())

	ctx, span := tracer.Start(context.Background(), "resolve")
	tracer.EmitPlan(ctx, []string{"Std", "Util"})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "wave_planned", events[0].Name)
	assert.Equal(t, []string{"Std", "Util"}, events[0].Attributes[0].Value.AsStringSlice())
}

func TestOTelSpan_RecordErrorAndWrite(t *testing.T) {
	sr, tp := setupMonitor(t)
	tracer := telemetry.NewOTelTracer(tp, "test-tracer")

	_, span := tracer.Start(context.Background(), "fetch")
	n, err := span.Write([]byte("cloning"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	span.RecordError(errors.New("boom"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 2)
	assert.Equal(t, "log", spans[0].Events()[0].Name)
}

func TestNoOpTracer_Start(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()

	ctx := context.Background()
	got, span := tracer.Start(ctx, "test-span")
	assert.Equal(t, ctx, got)

	span.SetAttribute("key", "value")
	span.RecordError(errors.New("ignored"))
	n, err := span.Write([]byte("test log"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	tracer.EmitPlan(ctx, []string{"Std"})
	span.End()
}
