package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false, ServiceName: "storefront"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	// The gRPC exporter connects lazily, so no collector is needed here
	tp, err := NewTracerProvider(context.Background(), Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     0.5,
		ServiceName:       "storefront",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = tp.Shutdown(ctx)
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1, sdktrace.ParentBased(sdktrace.AlwaysSample()).Description()},
		{2, sdktrace.ParentBased(sdktrace.AlwaysSample()).Description()},
		{0, sdktrace.ParentBased(sdktrace.NeverSample()).Description()},
		{0.25, sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description()},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sampler(tt.ratio).Description())
	}
}
