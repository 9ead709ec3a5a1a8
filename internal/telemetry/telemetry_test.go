package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), "", "myfestival")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestSetup_Enabled(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	// The exporter connects lazily, so an unreachable collector is fine here.
	shutdown, err := Setup(context.Background(), "http://127.0.0.1:4318", "myfestival")
	require.NoError(t, err)
	assert.NotEqual(t, before, otel.GetTracerProvider())
	_ = shutdown(context.Background())
}
