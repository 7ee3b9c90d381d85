package main

import (
	"context"
	"os"

	"github.com/gomind-actions/actionkit/config"
	"github.com/gomind-actions/actionkit/engine"
	"github.com/gomind-actions/actionkit/obslog"
	"github.com/gomind-actions/actionkit/registry"
	"github.com/gomind-actions/actionkit/telemetry"
)

// AppContext bundles the long-lived services every subcommand shares: the
// action registry, the configured Executor, and a component-scoped
// logger. Grounded on cmd/streamy's AppContext bundling role.
type AppContext struct {
	Config   *config.Config
	Logger   obslog.Logger
	Registry *registry.Registry
	Engine   *engine.Executor
}

// newAppContext loads config from defaults+env, wires up logging, registers
// the illustrative demo actions, and attaches telemetry when enabled.
func newAppContext() (*AppContext, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	logger := obslog.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	reg := registry.New()
	registerDemoActions(reg)

	exec := engine.New(cfg, logger)
	if cfg.TelemetryEnabled {
		tracer, err := telemetry.New(context.Background(), telemetry.Config{ServiceName: "actionctl", UseStdout: true})
		if err == nil {
			exec = exec.WithTelemetry(tracer)
		} else {
			logger.Warn("telemetry disabled: failed to start tracer", map[string]any{"error": err.Error()})
		}
	}

	return &AppContext{Config: cfg, Logger: logger, Registry: reg, Engine: exec}, nil
}
