package trace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestWithSpanRecordsError(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	require.NoError(t, initialize(DefaultConfig(), exp))

	boom := errors.New("device gone")
	err := WithSpan(context.Background(), "negotiate", func(context.Context) error {
		return boom
	}, SessionAttrs("abc")...)
	assert.ErrorIs(t, err, boom)

	require.NoError(t, WithSpan(context.Background(), "stream", func(context.Context) error { return nil },
		StreamAttrs("playback", "Headphones", 2, 48000, 2048)...))

	require.NoError(t, Shutdown(context.Background()))

	spans := exp.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "negotiate", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "stream", spans[1].Name)
	assert.Equal(t, codes.Unset, spans[1].Status.Code)
}

func TestInitializeTwice(t *testing.T) {
	require.NoError(t, Initialize(context.Background(), DefaultConfig()))
	t.Cleanup(func() { _ = Shutdown(context.Background()) })

	assert.ErrorIs(t, Initialize(context.Background(), DefaultConfig()), ErrAlreadyInitialized)
}

func TestInitializeUnknownExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exporter = "zipkin"
	assert.Error(t, Initialize(context.Background(), cfg))
}

func TestSpansBeforeInitialize(t *testing.T) {
	require.NoError(t, Shutdown(context.Background()))

	_, span := StartSpan(context.Background(), "noop")
	assert.NotPanics(t, func() {
		RecordError(span, errors.New("x"))
		RecordError(span, nil)
		span.End()
	})
}
