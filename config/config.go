// Package config holds the engine-wide defaults every Options field falls
// back to, loaded defaults-then-env-then-functional-options exactly as
// core/config.go describes its own precedence: "environment variables
// take precedence over defaults but are overridden by functional
// options."
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every knob enumerated in §6, at the layer below a single
// Options call: these are the engine-wide defaults Options fields fall
// back to when left at their zero value.
type Config struct {
	DefaultTimeoutMs     int64  `json:"default_timeout_ms" env:"ACTIONKIT_DEFAULT_TIMEOUT_MS"`
	DefaultMaxRetries    int    `json:"default_max_retries" env:"ACTIONKIT_DEFAULT_MAX_RETRIES"`
	DefaultBackoffMs     int64  `json:"default_backoff_ms" env:"ACTIONKIT_DEFAULT_BACKOFF_MS"`
	MaxBackoffMs         int64  `json:"max_backoff_ms" env:"ACTIONKIT_MAX_BACKOFF_MS"`
	AwaitTimeoutMs       int64  `json:"await_timeout_ms" env:"ACTIONKIT_AWAIT_TIMEOUT_MS"`
	AsyncShutdownGraceMs int64  `json:"async_shutdown_grace_ms" env:"ACTIONKIT_ASYNC_SHUTDOWN_GRACE_MS"`
	AsyncDownGraceMs     int64  `json:"async_down_grace_ms" env:"ACTIONKIT_ASYNC_DOWN_GRACE_MS"`

	// TaskDrainTimeoutMs/TaskDrainMaxMessages stand in for the spec's
	// mailbox-flush knobs. They are loaded and validated with the rest of
	// Config, but no package reads them: Go has no mailbox, and
	// supervisor.TimeoutCleanup has no drain step.
	TaskDrainTimeoutMs   int64 `json:"task_drain_timeout_ms" env:"ACTIONKIT_TASK_DRAIN_TIMEOUT_MS"`
	TaskDrainMaxMessages int   `json:"task_drain_max_messages" env:"ACTIONKIT_TASK_DRAIN_MAX_MESSAGES"`

	CompensationTimeoutMs   int64 `json:"compensation_timeout_ms" env:"ACTIONKIT_COMPENSATION_TIMEOUT_MS"`
	CompensationMaxRetries  int   `json:"compensation_max_retries" env:"ACTIONKIT_COMPENSATION_MAX_RETRIES"`
	CompensationDownGraceMs int64 `json:"compensation_down_grace_ms" env:"ACTIONKIT_COMPENSATION_DOWN_GRACE_MS"`

	InstanceHandle   string `json:"instance_handle" env:"ACTIONKIT_INSTANCE_HANDLE"`
	TelemetryEnabled bool   `json:"telemetry_enabled" env:"ACTIONKIT_TELEMETRY_ENABLED"`

	LogLevel  string `json:"log_level" env:"ACTIONKIT_LOG_LEVEL"`
	LogFormat string `json:"log_format" env:"ACTIONKIT_LOG_FORMAT"`
}

// DefaultConfig mirrors DefaultConfig()'s role in the teacher: the base
// layer before env vars or functional options are applied.
func DefaultConfig() *Config {
	return &Config{
		DefaultTimeoutMs:        30_000,
		DefaultMaxRetries:       1,
		DefaultBackoffMs:        250,
		MaxBackoffMs:            30_000,
		AwaitTimeoutMs:          30_000,
		AsyncShutdownGraceMs:    1_000,
		AsyncDownGraceMs:        100,
		TaskDrainTimeoutMs:      1_000,
		TaskDrainMaxMessages:    100,
		CompensationTimeoutMs:   10_000,
		CompensationMaxRetries:  1,
		CompensationDownGraceMs: 500,
		TelemetryEnabled:        false,
		LogLevel:                "info",
		LogFormat:               "text",
	}
}

// Option mutates a Config during New. Applied after LoadFromEnv, so
// functional options win over environment variables, which in turn win
// over DefaultConfig (§6's three-layer precedence).
type Option func(*Config) error

// New builds a Config: defaults, then environment, then opts, validating
// at the end.
func New(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("actionkit: failed to load env config: %w", err)
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("actionkit: failed to apply option: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("actionkit: invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromEnv overlays environment variables onto c, leaving unset or
// unparsable variables untouched.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("ACTIONKIT_DEFAULT_TIMEOUT_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.DefaultTimeoutMs = n
		}
	}
	if v := os.Getenv("ACTIONKIT_DEFAULT_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DefaultMaxRetries = n
		}
	}
	if v := os.Getenv("ACTIONKIT_DEFAULT_BACKOFF_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.DefaultBackoffMs = n
		}
	}
	if v := os.Getenv("ACTIONKIT_MAX_BACKOFF_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxBackoffMs = n
		}
	}
	if v := os.Getenv("ACTIONKIT_AWAIT_TIMEOUT_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.AwaitTimeoutMs = n
		}
	}
	if v := os.Getenv("ACTIONKIT_ASYNC_SHUTDOWN_GRACE_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.AsyncShutdownGraceMs = n
		}
	}
	if v := os.Getenv("ACTIONKIT_ASYNC_DOWN_GRACE_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.AsyncDownGraceMs = n
		}
	}
	if v := os.Getenv("ACTIONKIT_TASK_DRAIN_TIMEOUT_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.TaskDrainTimeoutMs = n
		}
	}
	if v := os.Getenv("ACTIONKIT_TASK_DRAIN_MAX_MESSAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TaskDrainMaxMessages = n
		}
	}
	if v := os.Getenv("ACTIONKIT_COMPENSATION_TIMEOUT_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.CompensationTimeoutMs = n
		}
	}
	if v := os.Getenv("ACTIONKIT_COMPENSATION_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CompensationMaxRetries = n
		}
	}
	if v := os.Getenv("ACTIONKIT_COMPENSATION_DOWN_GRACE_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.CompensationDownGraceMs = n
		}
	}
	if v := os.Getenv("ACTIONKIT_INSTANCE_HANDLE"); v != "" {
		c.InstanceHandle = v
	}
	if v := os.Getenv("ACTIONKIT_TELEMETRY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.TelemetryEnabled = b
		}
	}
	if v := os.Getenv("ACTIONKIT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ACTIONKIT_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	return nil
}

// Validate rejects configurations that would make the engine misbehave
// silently.
func (c *Config) Validate() error {
	if c.DefaultTimeoutMs < 0 {
		return fmt.Errorf("default_timeout_ms must be >= 0, got %d", c.DefaultTimeoutMs)
	}
	if c.DefaultMaxRetries < 0 {
		return fmt.Errorf("default_max_retries must be >= 0, got %d", c.DefaultMaxRetries)
	}
	if c.MaxBackoffMs > 0 && c.DefaultBackoffMs > c.MaxBackoffMs {
		return fmt.Errorf("default_backoff_ms (%d) must not exceed max_backoff_ms (%d)", c.DefaultBackoffMs, c.MaxBackoffMs)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("log_format must be \"text\" or \"json\", got %q", c.LogFormat)
	}
	return nil
}

// WithTimeout overrides DefaultTimeoutMs.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) error {
		c.DefaultTimeoutMs = d.Milliseconds()
		return nil
	}
}

// WithMaxRetries overrides DefaultMaxRetries.
func WithMaxRetries(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("max retries must be >= 0, got %d", n)
		}
		c.DefaultMaxRetries = n
		return nil
	}
}

// WithBackoff overrides the default/max backoff pair.
func WithBackoff(initial, max time.Duration) Option {
	return func(c *Config) error {
		c.DefaultBackoffMs = initial.Milliseconds()
		c.MaxBackoffMs = max.Milliseconds()
		return nil
	}
}

// WithCompensation overrides the compensation timeout/retry budget.
func WithCompensation(timeout time.Duration, maxRetries int) Option {
	return func(c *Config) error {
		c.CompensationTimeoutMs = timeout.Milliseconds()
		c.CompensationMaxRetries = maxRetries
		return nil
	}
}

// WithInstanceHandle pins the engine to a specific supervisor instance.
func WithInstanceHandle(handle string) Option {
	return func(c *Config) error {
		c.InstanceHandle = handle
		return nil
	}
}

// WithTelemetry toggles telemetry emission.
func WithTelemetry(enabled bool) Option {
	return func(c *Config) error {
		c.TelemetryEnabled = enabled
		return nil
	}
}

// WithLogLevel overrides LogLevel.
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		c.LogLevel = level
		return nil
	}
}

// WithLogFormat overrides LogFormat ("text" or "json").
func WithLogFormat(format string) Option {
	return func(c *Config) error {
		c.LogFormat = format
		return nil
	}
}
