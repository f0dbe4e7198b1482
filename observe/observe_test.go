package observe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{name: "minimal", cfg: Config{ServiceName: "confctl"}},
		{name: "missing service", cfg: Config{}, want: ErrMissingServiceName},
		{
			name: "bad tracing exporter",
			cfg:  Config{ServiceName: "s", Tracing: TracingConfig{Enabled: true, Exporter: "zipkin"}},
			want: ErrInvalidTracingExporter,
		},
		{
			name: "bad sample pct",
			cfg:  Config{ServiceName: "s", Tracing: TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5}},
			want: ErrInvalidSamplePct,
		},
		{
			name: "bad metrics exporter",
			cfg:  Config{ServiceName: "s", Metrics: MetricsConfig{Enabled: true, Exporter: "statsd"}},
			want: ErrInvalidMetricsExporter,
		},
		{
			name: "bad log level",
			cfg:  Config{ServiceName: "s", Logging: LoggingConfig{Enabled: true, Level: "trace"}},
			want: ErrInvalidLogLevel,
		},
		{
			name: "disabled subsystems are not validated",
			cfg:  Config{ServiceName: "s", Tracing: TracingConfig{Exporter: "zipkin"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("Validate() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNewObserver_Disabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "observe-test"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	if obs.Tracer() == nil || obs.Meter() == nil || obs.Metrics() == nil || obs.Logger() == nil {
		t.Fatal("expected non-nil no-op primitives")
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestNewObserver_StdoutExporters(t *testing.T) {
	var out bytes.Buffer
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "observe-test",
		Version:     "0.1.0",
		Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "stdout"},
		Logging:     LoggingConfig{Enabled: true, Level: "info"},
		Output:      &out,
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	ctx := context.Background()
	_, span := obs.Tracer().StartSpan(ctx, SpanInitialize)
	obs.Tracer().EndSpan(span, nil)
	obs.Metrics().RecordReload(ctx, nil)
	obs.Logger().Info(ctx, "initialized")

	if err := obs.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{SpanInitialize, MetricReloads, "initialized"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	if _, err := NewObserver(context.Background(), Config{}); !errors.Is(err, ErrMissingServiceName) {
		t.Fatalf("NewObserver() error = %v, want ErrMissingServiceName", err)
	}
}
