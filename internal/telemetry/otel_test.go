package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stuproj/projectshelf/internal/config"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetupTracing_Disabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TelemetryCfg
	}{
		{name: "disabled", cfg: config.TelemetryCfg{Enabled: false, OtlpEndpoint: "collector:4317"}},
		{name: "enabled without endpoint", cfg: config.TelemetryCfg{Enabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := SetupTracing(&config.Config{Telemetry: tt.cfg})
			require.NoError(t, err)
			assert.Nil(t, tr)
			assert.NoError(t, tr.Shutdown(context.Background()))
		})
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		name    string
		ratio   float64
		clamped float64
		want    sdktrace.Sampler
	}{
		{name: "zero means always", ratio: 0, clamped: 1, want: sdktrace.AlwaysSample()},
		{name: "negative means always", ratio: -0.5, clamped: 1, want: sdktrace.AlwaysSample()},
		{name: "fraction kept", ratio: 0.25, clamped: 0.25, want: sdktrace.TraceIDRatioBased(0.25)},
		{name: "one is always", ratio: 1, clamped: 1, want: sdktrace.AlwaysSample()},
		{name: "above one capped", ratio: 3, clamped: 1, want: sdktrace.AlwaysSample()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.clamped, clampRatio(tt.ratio))
			assert.Equal(t, tt.want.Description(), newSampler(tt.ratio).Description())
		})
	}
}

func TestGRPCEndpoint(t *testing.T) {
	assert.Equal(t, "collector:4317", grpcEndpoint("http://collector:4317"))
	assert.Equal(t, "collector:4317", grpcEndpoint("https://collector:4317"))
	assert.Equal(t, "collector:4317", grpcEndpoint("collector:4317"))
}
