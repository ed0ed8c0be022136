package telemetry_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/parcel/internal/adapters/telemetry"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/parcel/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestInterfaceSatisfaction(_ *testing.T) {
	var _ ports.Tracer = (*telemetry.OTelTracer)(nil)
	var _ ports.Span = (*telemetry.OTelSpan)(nil)
	var _ ports.Tracer = (*telemetry.NoOpTracer)(nil)
	var _ ports.Span = (*telemetry.NoOpSpan)(nil)
	var _ sdktrace.SpanProcessor = (*telemetry.LogBridge)(nil)
}

func newRecorded() (*telemetry.OTelTracer, *tracetest.SpanRecorder) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return telemetry.NewOTelTracerWithProvider(tp, "test"), rec
}

func TestOTelTracer_Attributes(t *testing.T) {
	tracer, rec := newRecorded()

	_, span := tracer.Start(t.Context(), "fetch", ports.WithAttribute("package", "foo"))
	span.SetAttribute("attempts", 2)
	span.SetAttribute("version", domain.MustParseVersion("1.2"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "fetch", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("package", "foo"))
	assert.Contains(t, ended[0].Attributes(), attribute.Int("attempts", 2))
	assert.Contains(t, ended[0].Attributes(), attribute.String("version", "1.2.0"))
}

func TestOTelTracer_RecordError(t *testing.T) {
	tracer, rec := newRecorded()

	_, span := tracer.Start(t.Context(), "resolve")
	span.RecordError(errors.New("no version satisfies constraint"))
	span.RecordError(nil)
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "no version satisfies constraint", ended[0].Status().Description)
	assert.Len(t, ended[0].Events(), 1)
}

func TestOTelTracer_Nesting(t *testing.T) {
	tracer, rec := newRecorded()

	ctx, parent := tracer.Start(t.Context(), "install")
	_, child := tracer.Start(ctx, "fetch")
	child.End()
	parent.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
}

func TestNoOpTracer_Start(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx, span := tracer.Start(t.Context(), "test-span")
	assert.NotNil(t, ctx)

	span.SetAttribute("key", "value")
	span.RecordError(errors.New("ignored"))
	span.End()
}

func TestLogBridge_OnEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	log.EXPECT().Debug("span ended",
		"span", "fetch",
		"duration", gomock.Any(),
		"package", "foo",
		"error", "boom",
	).Times(1)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewLogBridge(log)))
	tracer := telemetry.NewOTelTracerWithProvider(tp, "test")

	_, span := tracer.Start(t.Context(), "fetch", ports.WithAttribute("package", "foo"))
	span.RecordError(errors.New("boom"))
	span.End()
}
