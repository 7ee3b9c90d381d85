package action

import (
	"context"
)

// CompensationConfig mirrors an action's compensation_config (§3).
type CompensationConfig struct {
	Enabled    bool
	TimeoutMs  int64
	MaxRetries int
}

// Options configures one Executor/Async/Chain/Plan invocation (§6). Zero
// values mean "use the engine's configured default" at every layer,
// except Timeout: its zero value is itself meaningful (§4.6 step 1).
type Options struct {
	Timeout              int64 // milliseconds; 0 means run in-caller with no timer
	MaxRetries           int
	BackoffMs            int64
	MaxBackoffMs         int64
	CompensationTimeout  int64 // ms; 0 means fall through to config/opts.Timeout
	InstanceHandle       string
	TelemetryEnabled     bool
	InterruptCheck       func(Params) bool
	OnProgress           func(Params)
}

// Schema is the engine's only view of a schema validator: a capability
// that validates (and may transform) data, passing undeclared keys through
// unchanged. Concrete backends live in package schema; the engine never
// interprets a schema beyond calling Validate.
type Schema interface {
	Validate(data Params) (Params, error)
}

// openSchema is the zero-value Schema used when an action declares no
// output_schema: validation is the identity function.
type openSchema struct{}

func (openSchema) Validate(data Params) (Params, error) { return data, nil }

// NoSchema is an always-passing Schema, used for actions with no
// input/output schema declared.
var NoSchema Schema = openSchema{}

// Action is the contract every action implements (§3/§4.1). Missing
// optional callbacks are identity/pass-through; BaseAction supplies that
// default so concrete actions only override what they need.
type Action interface {
	Metadata() Metadata
	InputSchema() Schema
	OutputSchema() Schema
	CompensationConfig() CompensationConfig

	BeforeValidateInput(ctx context.Context, params Params) (Params, error)
	AfterValidateInput(ctx context.Context, params Params) (Params, error)
	Run(ctx context.Context, params Params) Result
	AfterRun(ctx context.Context, result Result) Result
	BeforeValidateOutput(ctx context.Context, out Params) (Params, error)
	AfterValidateOutput(ctx context.Context, out Params) (Params, error)
	OnError(ctx context.Context, params Params, err *Exception, opts Options) (Params, error)
}

// BaseAction provides identity-hook defaults, the same "embed a Base* and
// override what you need" idiom used throughout this codebase's ambient
// stack. Concrete actions embed *BaseAction and set Meta/Input/Output/Comp,
// then override Run (required) and any hooks they need.
type BaseAction struct {
	Meta  Metadata
	Input Schema
	Output Schema
	Comp  CompensationConfig

	// RunFunc is the required run callback.
	RunFunc func(ctx context.Context, params Params) Result

	BeforeValidateInputFunc  func(ctx context.Context, params Params) (Params, error)
	AfterValidateInputFunc   func(ctx context.Context, params Params) (Params, error)
	AfterRunFunc             func(ctx context.Context, result Result) Result
	BeforeValidateOutputFunc func(ctx context.Context, out Params) (Params, error)
	AfterValidateOutputFunc  func(ctx context.Context, out Params) (Params, error)
	OnErrorFunc              func(ctx context.Context, params Params, err *Exception, opts Options) (Params, error)
}

func (b *BaseAction) Metadata() Metadata { return b.Meta }

func (b *BaseAction) InputSchema() Schema {
	if b.Input == nil {
		return NoSchema
	}
	return b.Input
}

func (b *BaseAction) OutputSchema() Schema {
	if b.Output == nil {
		return NoSchema
	}
	return b.Output
}

func (b *BaseAction) CompensationConfig() CompensationConfig { return b.Comp }

func (b *BaseAction) BeforeValidateInput(ctx context.Context, params Params) (Params, error) {
	if b.BeforeValidateInputFunc == nil {
		return params, nil
	}
	return b.BeforeValidateInputFunc(ctx, params)
}

func (b *BaseAction) AfterValidateInput(ctx context.Context, params Params) (Params, error) {
	if b.AfterValidateInputFunc == nil {
		return params, nil
	}
	return b.AfterValidateInputFunc(ctx, params)
}

func (b *BaseAction) Run(ctx context.Context, params Params) Result {
	if b.RunFunc == nil {
		return Err(NewInternal("action has no Run implementation", nil))
	}
	return b.RunFunc(ctx, params)
}

func (b *BaseAction) AfterRun(ctx context.Context, result Result) Result {
	if b.AfterRunFunc == nil {
		return result
	}
	return b.AfterRunFunc(ctx, result)
}

func (b *BaseAction) BeforeValidateOutput(ctx context.Context, out Params) (Params, error) {
	if b.BeforeValidateOutputFunc == nil {
		return out, nil
	}
	return b.BeforeValidateOutputFunc(ctx, out)
}

func (b *BaseAction) AfterValidateOutput(ctx context.Context, out Params) (Params, error) {
	if b.AfterValidateOutputFunc == nil {
		return out, nil
	}
	return b.AfterValidateOutputFunc(ctx, out)
}

func (b *BaseAction) OnError(ctx context.Context, params Params, err *Exception, opts Options) (Params, error) {
	if b.OnErrorFunc == nil {
		return nil, err
	}
	return b.OnErrorFunc(ctx, params, err, opts)
}
