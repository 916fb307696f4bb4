package observer

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

// Config assembles the built-in observers from declarative settings.
type Config struct {
	// Logging configures the structured log observer.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus observer.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configures the OpenTelemetry observer.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures structured logging of evaluation events.
type LoggingConfig struct {
	// Enabled controls whether the log observer is built.
	Enabled bool `yaml:"enabled"`

	// Level sets the minimum log level (trace, debug, info, warn, error, fatal).
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal"`

	// Format specifies the log format (console, json).
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`

	// Output specifies where logs are written (stdout, stderr, file path).
	Output string `yaml:"output"`
}

// MetricsConfig configures Prometheus metrics collection.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool `yaml:"enabled"`

	// Namespace is the metrics namespace prefix.
	Namespace string `yaml:"namespace"`

	// Buckets are the process duration histogram buckets in seconds.
	Buckets []float64 `yaml:"buckets"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	Enabled bool `yaml:"enabled"`

	// ServiceName identifies the service on exported spans.
	ServiceName string `yaml:"service_name"`

	// Exporter specifies the span exporter (stdout, none).
	Exporter string `yaml:"exporter" validate:"omitempty,oneof=stdout none"`

	// SamplingRate is the trace sampling rate (0.0 to 1.0).
	SamplingRate float64 `yaml:"sampling_rate" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the default observer configuration: console
// logging at info level, metrics under the evalgraph namespace, tracing
// off.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Format:  "console",
			Output:  "stderr",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "evalgraph",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			ServiceName:  "evalgraph",
			Exporter:     "none",
			SamplingRate: 1.0,
		},
	}
}

// LoadConfig reads a YAML configuration file, applying its settings over
// the defaults returned by DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its declared constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid observer config: %w", err)
	}
	return nil
}

// Build assembles the configured observers into a single Observer and
// returns a shutdown function that flushes any buffered telemetry.
// Metrics collectors are registered with reg; a nil reg uses the
// Prometheus default registerer.
func (c *Config) Build(reg prometheus.Registerer) (Observer, func(context.Context) error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	var obs []Observer

	if c.Logging.Enabled {
		log, err := NewLogger(c.Logging)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build log observer: %w", err)
		}
		obs = append(obs, NewLogObserver(log))
	}

	if c.Metrics.Enabled {
		m, err := NewMetricsObserver(c.Metrics, reg)
		if err != nil {
			return nil, nil, err
		}
		obs = append(obs, m)
	}

	shutdown := func(context.Context) error { return nil }
	if c.Tracing.Enabled {
		t, err := NewTraceObserver(c.Tracing)
		if err != nil {
			return nil, nil, err
		}
		obs = append(obs, t)
		shutdown = t.Shutdown
	}

	return Multi(obs...), shutdown, nil
}
