package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func TestInitWithExporter(t *testing.T) {
	ctx := context.Background()
	exp := tracetest.NewInMemoryExporter()

	shutdown, err := InitWithExporter(ctx, "voxelworld-test", "instance-1", exp)
	require.NoError(t, err)

	tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	require.True(t, ok, "глобальный провайдер должен быть из SDK")

	_, span := otel.Tracer("test").Start(ctx, "frame")
	span.End()

	// Батчер отдаёт спаны экспортеру только после ForceFlush;
	// Shutdown экспортера очищает накопленное, поэтому проверяем до него
	require.NoError(t, tp.ForceFlush(ctx))
	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "frame", spans[0].Name)

	var service string
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == semconv.ServiceNameKey {
			service = kv.Value.AsString()
		}
	}
	assert.Equal(t, "voxelworld-test", service)

	require.NoError(t, shutdown(ctx))
	assert.Empty(t, exp.GetSpans(), "после shutdown экспортер пуст")
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop()(context.Background()))
}
