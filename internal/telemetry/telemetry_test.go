package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		ServiceName:    "kcp-test",
		ServiceVersion: "0.0.1",
		Environment:    "test",
		SampleRate:     1.0,
	}
}

func shutdown(t *testing.T, tel *Telemetry) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing service name", func(c *Config) { c.ServiceName = "" }, ErrMissingServiceName},
		{"missing service version", func(c *Config) { c.ServiceVersion = "" }, ErrMissingServiceVersion},
		{"negative sample rate", func(c *Config) { c.SampleRate = -0.1 }, ErrInvalidSampleRate},
		{"sample rate above one", func(c *Config) { c.SampleRate = 1.1 }, ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("accepts boundary sample rates", func(t *testing.T) {
		for _, rate := range []float64{0.0, 0.5, 1.0} {
			cfg := validConfig()
			cfg.SampleRate = rate
			if err := cfg.Validate(); err != nil {
				t.Errorf("rate %v: expected no error, got %v", rate, err)
			}
		}
	})
}

func TestInitialize(t *testing.T) {
	t.Run("rejects an invalid config", func(t *testing.T) {
		cfg := validConfig()
		cfg.ServiceName = ""

		tel, err := Initialize(context.Background(), cfg)

		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if tel != nil {
			t.Error("expected nil telemetry on error")
		}
	})

	t.Run("sets up only the enabled providers", func(t *testing.T) {
		tests := []struct {
			name       string
			tracing    bool
			metrics    bool
			wantTracer bool
			wantMeter  bool
		}{
			{"neither", false, false, false, false},
			{"tracing only", true, false, true, false},
			{"metrics only", false, true, false, true},
			{"both", true, true, true, true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg := validConfig()
				cfg.EnableTracing = tt.tracing
				cfg.EnableMetrics = tt.metrics

				tel, err := Initialize(context.Background(), cfg,
					WithTraceExporter(NewNoopTraceExporter()),
					WithMetricExporter(NewNoopMetricExporter()),
				)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				defer shutdown(t, tel)

				if got := tel.TracerProvider() != nil; got != tt.wantTracer {
					t.Errorf("tracer provider presence = %v, want %v", got, tt.wantTracer)
				}
				if got := tel.MeterProvider() != nil; got != tt.wantMeter {
					t.Errorf("meter provider presence = %v, want %v", got, tt.wantMeter)
				}
			})
		}
	})
}

func TestShutdown(t *testing.T) {
	t.Run("no-op with no providers", func(t *testing.T) {
		tel := &Telemetry{}

		if err := tel.Shutdown(context.Background()); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("flushes both providers", func(t *testing.T) {
		cfg := validConfig()
		cfg.EnableTracing = true
		cfg.EnableMetrics = true

		tel, err := Initialize(context.Background(), cfg,
			WithTraceExporter(NewNoopTraceExporter()),
			WithMetricExporter(NewNoopMetricExporter()),
		)
		if err != nil {
			t.Fatalf("initialize failed: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tel.Shutdown(ctx); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want string
	}{
		{"zero rate never samples", 0.0, "AlwaysOffSampler"},
		{"negative rate never samples", -0.5, "AlwaysOffSampler"},
		{"full rate always samples", 1.0, "AlwaysOnSampler"},
		{"above one always samples", 1.5, "AlwaysOnSampler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler := createSampler(tt.rate)

			if sampler == nil {
				t.Fatal("expected sampler, got nil")
			}
			if sampler.Description() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, sampler.Description())
			}
		})
	}

	t.Run("fractional rate is parent based", func(t *testing.T) {
		if sampler := createSampler(0.25); sampler == nil {
			t.Fatal("expected sampler, got nil")
		}
	})
}
