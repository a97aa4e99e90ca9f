package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"valid minimal", Config{ServiceName: "postsync"}, nil},
		{"missing service name", Config{}, ErrMissingServiceName},
		{
			"bad tracing exporter",
			Config{ServiceName: "postsync", Tracing: TracingConfig{Enabled: true, Exporter: "zipkin"}},
			ErrInvalidTracingExporter,
		},
		{
			"sample pct out of range",
			Config{ServiceName: "postsync", Tracing: TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.5}},
			ErrInvalidSamplePct,
		},
		{
			"bad metrics exporter",
			Config{ServiceName: "postsync", Metrics: MetricsConfig{Enabled: true, Exporter: "statsd"}},
			ErrInvalidMetricsExporter,
		},
		{
			"bad log level",
			Config{ServiceName: "postsync", Logging: LoggingConfig{Enabled: true, Level: "trace"}},
			ErrInvalidLogLevel,
		},
		{
			"disabled subsystems ignore bad values",
			Config{ServiceName: "postsync", Tracing: TracingConfig{Exporter: "zipkin"}},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewObserver_Disabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "postsync"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("observer components must never be nil")
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewObserver_EnabledWithNoneExporters(t *testing.T) {
	var buf bytes.Buffer
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "postsync",
		Version:     "test",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     LoggingConfig{Enabled: true, Level: "info", Writer: &buf},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	obs.Logger().Info(context.Background(), "hello")
	if buf.Len() == 0 {
		t.Error("expected log output on configured writer")
	}

	if _, err := MiddlewareFromObserver(obs); err != nil {
		t.Errorf("MiddlewareFromObserver() error = %v", err)
	}
}

func TestOperationMeta_Names(t *testing.T) {
	tests := []struct {
		meta     OperationMeta
		wantSpan string
		wantID   string
	}{
		{OperationMeta{Kind: KindRequest, Name: "GET"}, "postsync.request.GET", "GET"},
		{OperationMeta{Kind: KindMutation, Entity: "comments", Name: "like"}, "postsync.mutation.comments.like", "comments.like"},
	}
	for _, tt := range tests {
		if got := tt.meta.SpanName(); got != tt.wantSpan {
			t.Errorf("SpanName() = %q, want %q", got, tt.wantSpan)
		}
		if got := tt.meta.OperationID(); got != tt.wantID {
			t.Errorf("OperationID() = %q, want %q", got, tt.wantID)
		}
	}
}
