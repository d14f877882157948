package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracerDisabledIsNoop(t *testing.T) {
	tracer, closeFn, err := InitTracer(Config{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, opentracing.NoopTracer{}, tracer)
	assert.NotPanics(t, closeFn)

	span, ctx := StartSpan(context.Background(), "feed.acquire")
	require.NotNil(t, span)
	assert.NotNil(t, opentracing.SpanFromContext(ctx))
	assert.NotPanics(t, func() { Finish(span, errors.New("boom")) })
}
